package corpus

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var files = map[string]string{
	"train/sci.space/60001":        "Shuttle launch delayed.",
	"train/rec.sport.hockey/52001": "Leafs win in overtime.",
	"test/sci.space/61000":         "Orbit insertion caf\xe9.",
	"train/sci.space/60002":        "",
}

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ".DS_Store"), []byte("junk"), 0o644))
	return root
}

func writeArchive(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "train/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	p := filepath.Join(t.TempDir(), "20news.tar.gz")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	for name, root := range map[string]string{"directory": writeTree(t), "archive": writeArchive(t)} {
		t.Run(name, func(t *testing.T) {
			docs, err := Load(context.Background(), root)
			require.NoError(t, err)
			require.Len(t, docs, 4)

			// ordered by path: test/... before train/rec... before train/sci...
			assert.Equal(t, 0, docs[0].Index)
			assert.Equal(t, "sci.space", docs[0].Group)
			assert.Equal(t, "Orbit insertion café.", docs[0].Content)
			assert.Equal(t, "rec.sport.hockey", docs[1].Group)
			assert.Equal(t, 2, docs[2].Index)
			assert.Equal(t, "Shuttle launch delayed.", docs[2].Content)

			// empty posts are still documents
			assert.Equal(t, 3, docs[3].Index)
			assert.Equal(t, "sci.space", docs[3].Group)
			assert.Empty(t, docs[3].Content)
		})
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsPlainFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	_, err := Load(context.Background(), p)
	assert.Error(t, err)
}
