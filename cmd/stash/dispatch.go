package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/stash/pkg/archive"
	"github.com/arthur-debert/stash/pkg/config"
	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/index"
	"github.com/arthur-debert/stash/pkg/journal"
	"github.com/arthur-debert/stash/pkg/manager"
	"github.com/arthur-debert/stash/pkg/paths"
	"github.com/arthur-debert/stash/pkg/prompt"
	"github.com/arthur-debert/stash/pkg/resolver"
)

// dispatch opens the store, resolves the request into an intent, and
// executes it.
func dispatch(req resolver.Request) error {
	fsys := filesystem.NewOS()
	p := paths.New()

	cfg, err := config.Load(p.ConfigFilePath())
	if err != nil {
		return err
	}

	intent, err := resolver.Infer(fsys, req)
	if err != nil {
		intent, err = disambiguate(req, err, cfg)
		if err != nil {
			return err
		}
	}

	idx := index.New(fsys, p.IndexPath())
	jnl := journal.New(fsys, p.JournalPath())
	mgr, err := manager.New(fsys, p, idx, jnl, cfg.Behavior.VerifyIntegrity)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to determine working directory")
	}

	switch it := intent.(type) {
	case resolver.InitIntent:
		if err := fsys.MkdirAll(p.EntriesDir(), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to initialize store at %s", p.StoreDir())
		}
		pterm.Success.Printfln("Initialized store at %s", p.StoreDir())
		return nil

	case resolver.ListIntent:
		return renderEntryList(mgr.List(), idx.TotalSize(), cfg)

	case resolver.SearchIntent:
		matches := mgr.Search(it.Pattern)
		if len(matches) == 0 {
			pterm.Info.Printfln("No entries match %q", it.Pattern)
			return nil
		}
		return renderEntryList(matches, 0, cfg)

	case resolver.InfoIntent:
		entry, err := mgr.LoadByIdentifier(it.Identifier)
		if err != nil {
			return err
		}
		renderEntryInfo(entry, cfg)
		return nil

	case resolver.HistoryIntent:
		renderHistory(jnl.Recent(20), cfg)
		return nil

	case resolver.CleanIntent:
		removed, err := mgr.Clean(int64(it.Days))
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Removed %d entries older than %d days", len(removed), it.Days)
		return nil

	case resolver.RenameIntent:
		if err := mgr.Rename(it.Old, it.New); err != nil {
			return err
		}
		pterm.Success.Printfln("Renamed %q to %q", it.Old, it.New)
		return nil

	case resolver.ExportIntent:
		count, err := archive.Export(mgr, p, it.Path)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Exported %d entries to %s", count, it.Path)
		return nil

	case resolver.ImportIntent:
		count, err := archive.Import(mgr, p, it.Path)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Imported %d entries from %s", count, it.Path)
		return nil

	case resolver.DumpIntent:
		ok, err := prompt.Confirm(
			fmt.Sprintf("Restore all %d entries to the current directory?", idx.Count()), false)
		if err != nil {
			return err
		}
		if !ok {
			pterm.Info.Println("Dump cancelled")
			return nil
		}
		count, err := mgr.Dump(cwd, true)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Restored %d entries", count)
		return nil

	case resolver.PushIntent:
		mode := manager.ModeMove
		if it.Copy {
			mode = manager.ModeCopy
		}
		entry, err := mgr.Create(it.Items, manager.CreateOptions{Name: it.Name, Mode: mode})
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Stashed %d item(s) as %s", len(entry.Items), entry.DisplayName())
		return nil

	case resolver.PopIntent:
		if it.Restore {
			entry, err := mgr.Restore(it.Identifier, it.Force)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Restored %s to %s", entry.DisplayName(), entry.WorkingDirectory)
			return nil
		}
		entry, err := mgr.Pop(it.Identifier, manager.PopOptions{
			Destination: cwd,
			Copy:        it.Copy,
			Force:       it.Force,
		})
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Restored %s", entry.DisplayName())
		return nil

	case resolver.PeekIntent:
		entry, err := mgr.Peek(it.Identifier, cwd, it.Force)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Copied %s out (entry kept)", entry.DisplayName())
		return nil

	default:
		return errors.Newf(errors.ErrInternal, "unhandled intent %T", intent)
	}
}

// disambiguate applies the configured ambiguity mode to a
// mixed-existence inference failure. Only push can absorb a mixed set;
// anything else keeps the original error.
func disambiguate(req resolver.Request, inferErr error, cfg config.Config) (resolver.Intent, error) {
	if !errors.IsErrorCode(inferErr, errors.ErrAmbiguous) {
		return nil, inferErr
	}
	details := errors.GetErrorDetails(inferErr)
	existing, ok := details["existing"].([]string)
	if !ok || len(existing) == 0 {
		return nil, inferErr
	}

	switch cfg.Defaults.AmbiguityMode {
	case config.AmbiguityPreferPush:
	case config.AmbiguityAsk:
		if !prompt.IsInteractive() {
			return nil, inferErr
		}
		confirmed, err := prompt.Confirm("Some paths do not exist. Stash only the existing ones?", false)
		if err != nil || !confirmed {
			return nil, inferErr
		}
	default:
		return nil, inferErr
	}

	req.Items = existing
	req.Push = true
	return resolver.Infer(filesystem.NewOS(), req)
}
