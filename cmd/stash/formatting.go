package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/stash/pkg/config"
	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/types"
)

// renderEntryList prints the index view as a table. totalSize of zero
// suppresses the footer (e.g. for search results).
func renderEntryList(entries []types.EntryMetadata, totalSize uint64, cfg config.Config) error {
	if len(entries) == 0 {
		pterm.Info.Println("Stash is empty")
		return nil
	}

	rows := pterm.TableData{{"ID", "NAME", "CREATED", "ITEMS", "SIZE"}}
	for _, meta := range entries {
		size := ""
		if cfg.Display.ShowSizes {
			size = humanize.Bytes(meta.TotalSizeBytes)
		}
		rows = append(rows, []string{
			types.ShortID(meta.UUID),
			meta.DisplayName(),
			meta.Created.Local().Format(cfg.Display.DateFormat),
			fmt.Sprintf("%d", meta.ItemCount),
			size,
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	if totalSize > 0 && cfg.Display.ShowSizes {
		pterm.Printfln("%d entries, %s total", len(entries), humanize.Bytes(totalSize))
	}
	return nil
}

// renderEntryInfo prints one entry's full manifest view.
func renderEntryInfo(entry *types.Entry, cfg config.Config) {
	pterm.DefaultSection.Println(entry.DisplayName())
	pterm.Printfln("ID:       %s", entry.UUID)
	pterm.Printfln("Created:  %s (%s)", entry.Created.Local().Format(cfg.Display.DateFormat),
		humanize.Time(entry.Created))
	pterm.Printfln("Origin:   %s", entry.WorkingDirectory)
	if cfg.Display.ShowSizes {
		pterm.Printfln("Size:     %s", humanize.Bytes(entry.TotalSizeBytes))
	}
	pterm.Printfln("Moved:    %t", entry.WasDestructive)
	pterm.Println()

	for _, item := range entry.Items {
		size := ""
		if cfg.Display.ShowSizes {
			size = "  " + humanize.Bytes(item.SizeBytes)
		}
		pterm.Printfln("  %s %-9s %s%s",
			filesystem.FormatPermissions(item.Permissions), item.Kind, item.OriginalPath, size)
	}
}

// renderHistory prints journal records, oldest first.
func renderHistory(ops []types.Operation, cfg config.Config) {
	if len(ops) == 0 {
		pterm.Info.Println("No operations recorded")
		return
	}
	for _, op := range ops {
		pterm.Printfln("%s  %s", op.Timestamp.Local().Format(cfg.Display.DateFormat), op.Describe())
	}
}
