package corpus

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"lsasearch/internal/constants"
)

var ErrEmptyCorpus = errors.New("corpus has no documents")

// entry - One file of the corpus before it gets its index
type entry struct {
	path    string
	content []byte
}

// Load - Read a 20-newsgroups style corpus: <group>/<file> text files, either as a directory
// tree or as a .tar.gz archive. Documents are ordered by path and indexed from 0.
func Load(ctx context.Context, root string) ([]constants.Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", root, err)
	}

	var entries []entry
	switch {
	case info.IsDir():
		entries, err = readDir(ctx, root)
	case strings.HasSuffix(root, ".tar.gz") || strings.HasSuffix(root, ".tgz"):
		entries, err = readArchive(ctx, root)
	default:
		return nil, fmt.Errorf("corpus %s: expected a directory or a .tar.gz archive", root)
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("corpus %s: %w", root, ErrEmptyCorpus)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	docs := make([]constants.Document, len(entries))
	for i, e := range entries {
		content, err := decode(e.content)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", e.path, err)
		}
		docs[i] = constants.Document{
			Index:   i,
			Group:   path.Base(path.Dir(e.path)),
			Content: content,
		}
	}
	return docs, nil
}

// decode - The newsgroup posts are latin-1; every byte is a valid code point there.
func decode(raw []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func readDir(ctx context.Context, root string) ([]entry, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	entries := make([]entry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU() * 2)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			entries[i] = entry{path: filepath.ToSlash(rel), content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func readArchive(ctx context.Context, archive string) ([]entry, error) {
	file, err := os.Open(archive)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archive, err)
	}
	defer gz.Close()

	var entries []entry
	reader := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", archive, err)
		}
		if header.Typeflag != tar.TypeReg || strings.HasPrefix(path.Base(header.Name), ".") {
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", header.Name, archive, err)
		}
		entries = append(entries, entry{path: header.Name, content: content})
	}
	return entries, nil
}
