// Package archive moves whole entries in and out of the store as
// gzip-compressed tarballs. Each archived entry keeps its identity
// directory (manifest plus data subtree), so an import re-registers
// entries exactly as they were exported.
package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/logging"
	"github.com/arthur-debert/stash/pkg/manager"
	"github.com/arthur-debert/stash/pkg/paths"
	"github.com/arthur-debert/stash/pkg/types"
)

// Export writes every entry in the store to a tar.gz at outPath and
// returns the number of entries archived.
func Export(mgr *manager.Manager, p *paths.Paths, outPath string) (int, error) {
	entries := mgr.List()
	if len(entries) == 0 {
		return 0, errors.New(errors.ErrInvalidInput, "no entries to export")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveWrite, "failed to create archive %s", outPath)
	}
	defer func() { _ = out.Close() }()

	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	for _, meta := range entries {
		if err := addTree(tw, p.EntriesDir(), meta.UUID.String()); err != nil {
			return 0, err
		}
	}

	if err := tw.Close(); err != nil {
		return 0, errors.Wrap(err, errors.ErrArchiveWrite, "failed to finalize archive")
	}
	if err := gzw.Close(); err != nil {
		return 0, errors.Wrap(err, errors.ErrArchiveWrite, "failed to finalize archive")
	}

	logger := logging.GetLogger("archive")
	logger.Info().Int("entries", len(entries)).Str("path", outPath).Msg("store exported")
	return len(entries), nil
}

// addTree archives root/name recursively, with header names relative
// to root.
func addTree(tw *tar.Writer, root, name string) error {
	base := filepath.Join(root, name)
	return filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to walk %s", path)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to relativize %s", path)
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to read link %s", path)
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to build header for %s", path)
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to write header for %s", path)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to open %s", path)
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(tw, f); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveWrite, "failed to archive %s", path)
		}
		return nil
	})
}

// Import extracts entries from a tar.gz written by Export, registers
// each new entry in the index, and journals one Import record. Entries
// whose identity is already present are rejected.
func Import(mgr *manager.Manager, p *paths.Paths, inPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveRead, "failed to open archive %s", inPath)
	}
	defer func() { _ = in.Close() }()

	gzr, err := gzip.NewReader(in)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrArchiveRead, "%s is not a gzip archive", inPath)
	}
	tr := tar.NewReader(gzr)

	seen := make(map[uuid.UUID]struct{})
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrArchiveRead, "failed to read archive %s", inPath)
		}

		id, rel, err := splitEntryPath(header.Name)
		if err != nil {
			return 0, err
		}
		if _, ok := seen[id]; !ok {
			if mgr.Index().Contains(id) {
				return 0, errors.Newf(errors.ErrInvalidInput,
					"entry %s already exists in the store", types.ShortID(id))
			}
			seen[id] = struct{}{}
		}

		dest := filepath.Join(p.EntriesDir(), id.String(), rel)
		if err := extractOne(tr, header, dest); err != nil {
			return 0, err
		}
	}

	count := 0
	for id := range seen {
		entry, err := mgr.Load(id)
		if err != nil {
			return 0, err
		}
		if err := mgr.Index().Add(entry.Metadata()); err != nil {
			return 0, err
		}
		count++
	}

	if err := mgr.Journal().Append(types.NewOperation(types.ImportKind{
		Path:       inPath,
		EntryCount: count,
	})); err != nil {
		return 0, err
	}

	logger := logging.GetLogger("archive")
	logger.Info().Int("entries", count).Str("path", inPath).Msg("archive imported")
	return count, nil
}

// splitEntryPath validates an archive member name and splits it into
// the entry identity and the path inside the entry directory. Names
// that escape their entry directory are rejected.
func splitEntryPath(name string) (uuid.UUID, string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return uuid.UUID{}, "", errors.Newf(errors.ErrArchiveRead, "unsafe archive member %q", name)
	}

	first, rest, _ := strings.Cut(clean, string(filepath.Separator))
	id, err := uuid.Parse(first)
	if err != nil {
		return uuid.UUID{}, "", errors.Newf(errors.ErrArchiveRead,
			"archive member %q is not under an entry directory", name)
	}
	return id, rest, nil
}

func extractOne(tr *tar.Reader, header *tar.Header, dest string) error {
	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(dest, os.FileMode(header.Mode).Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to create %s", dest)
		}
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to create %s", filepath.Dir(dest))
		}
		if err := os.Symlink(header.Linkname, dest); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to recreate link %s", dest)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to create %s", filepath.Dir(dest))
		}
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode).Perm())
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to create %s", dest)
		}
		if _, err := io.Copy(f, tr); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to extract %s", dest)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveRead, "failed to extract %s", dest)
		}
	}
	return nil
}
