package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"go.trai.ch/stage/internal/adapters/archive"
	"go.trai.ch/stage/internal/core/domain"
)

type entry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

func writeTar(t *testing.T, w io.Writer, entries []entry) {
	t.Helper()
	tw := tar.NewWriter(w)
	mtime := time.Date(2016, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Typeflag: e.typeflag,
			Linkname: e.linkname,
			ModTime:  mtime,
		}
		if hdr.Typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			hdr.PAXRecords = map[string]string{"comment": "stage"}
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
		}
		if hdr.Typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func createArchive(t *testing.T, dir, name string, entries []entry) string {
	t.Helper()
	var buf bytes.Buffer
	switch filepath.Ext(name) {
	case ".gz", ".tgz":
		gz := gzip.NewWriter(&buf)
		writeTar(t, gz, entries)
		require.NoError(t, gz.Close())
	case ".xz":
		xw, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		writeTar(t, xw, entries)
		require.NoError(t, xw.Close())
	default:
		writeTar(t, &buf, entries)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), domain.FilePerm))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExtract_RenamesTopLevelDirectory(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := createArchive(t, tarballs, "zlib-1.2.8.tar.gz", []entry{
		{name: "pax_global_header", typeflag: tar.TypeXGlobalHeader},
		{name: "zlib-1.2.8/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "zlib-1.2.8/configure", body: "#!/bin/sh\n", mode: 0o755},
		{name: "zlib-1.2.8/src/zlib.h", body: "#define ZLIB\n"},
		{name: "zlib-1.2.8/zlib.h", typeflag: tar.TypeSymlink, linkname: "src/zlib.h"},
		{name: "zlib-1.2.8/copy.h", typeflag: tar.TypeLink, linkname: "zlib-1.2.8/src/zlib.h"},
	})

	require.NoError(t, archive.NewExtractor().Extract(context.Background(), path, sources, "zlib"))

	assert.Equal(t, []string{"zlib"}, dirNames(t, sources))
	root := filepath.Join(sources, "zlib")
	assert.Equal(t, "#define ZLIB\n", readFile(t, filepath.Join(root, "src", "zlib.h")))
	assert.Equal(t, "#define ZLIB\n", readFile(t, filepath.Join(root, "zlib.h")))
	assert.Equal(t, "#define ZLIB\n", readFile(t, filepath.Join(root, "copy.h")))

	link, err := os.Readlink(filepath.Join(root, "zlib.h"))
	require.NoError(t, err)
	assert.Equal(t, "src/zlib.h", link)

	info, err := os.Stat(filepath.Join(root, "configure"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.Equal(t, 2016, info.ModTime().Year())
}

func TestExtract_WrapsLooseEntries(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := createArchive(t, tarballs, "loose-1.0.tar.xz", []entry{
		{name: "README", body: "hello\n"},
		{name: "src/main.c", body: "int main(void) { return 0; }\n"},
	})

	require.NoError(t, archive.NewExtractor().Extract(context.Background(), path, sources, "loose-1.0"))

	assert.Equal(t, []string{"loose-1.0"}, dirNames(t, sources))
	assert.Equal(t, "hello\n", readFile(t, filepath.Join(sources, "loose-1.0", "README")))
	assert.FileExists(t, filepath.Join(sources, "loose-1.0", "src", "main.c"))
}

func TestExtract_PlainTarWithDotPrefix(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := createArchive(t, tarballs, "tcl8.5.18-src.tar", []entry{
		{name: "./", typeflag: tar.TypeDir, mode: 0o755},
		{name: "./tcl8.5.18/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "./tcl8.5.18/README", body: "tcl\n"},
	})

	require.NoError(t, archive.NewExtractor().Extract(context.Background(), path, sources, "tcl8.5.18"))
	assert.Equal(t, "tcl\n", readFile(t, filepath.Join(sources, "tcl8.5.18", "README")))
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		entries []entry
		wantErr error
	}{
		{
			name:    "ParentTraversal",
			archive: "evil.tar.gz",
			entries: []entry{{name: "../evil", body: "x"}},
			wantErr: domain.ErrUnsafeArchiveEntry,
		},
		{
			name:    "AbsolutePath",
			archive: "evil.tar.gz",
			entries: []entry{{name: "/tmp/evil", body: "x"}},
			wantErr: domain.ErrUnsafeArchiveEntry,
		},
		{
			name:    "ThroughSymlink",
			archive: "evil.tar.gz",
			entries: []entry{
				{name: "pkg/out", typeflag: tar.TypeSymlink, linkname: "/tmp"},
				{name: "pkg/out/evil", body: "x"},
			},
			wantErr: domain.ErrUnsafeArchiveEntry,
		},
		{
			name:    "UnsupportedFormat",
			archive: "pkg-1.0.zip",
			wantErr: domain.ErrUnsupportedArchive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tarballs, sources := t.TempDir(), t.TempDir()
			path := createArchive(t, tarballs, tt.archive, tt.entries)

			err := archive.NewExtractor().Extract(context.Background(), path, sources, "pkg")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, dirNames(t, sources))
		})
	}
}

func TestExtract_CorruptArchive(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := filepath.Join(tarballs, "broken.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), domain.FilePerm))

	err := archive.NewExtractor().Extract(context.Background(), path, sources, "broken")
	require.ErrorIs(t, err, domain.ErrExtractFailed)
	assert.Empty(t, dirNames(t, sources))
}

func TestExtract_ExistingTarget(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := createArchive(t, tarballs, "pkg.tar", []entry{{name: "pkg/a", body: "a"}})
	require.NoError(t, os.Mkdir(filepath.Join(sources, "pkg"), domain.DirPerm))

	err := archive.NewExtractor().Extract(context.Background(), path, sources, "pkg")
	require.ErrorIs(t, err, domain.ErrExtractFailed)
}

func TestExtract_Canceled(t *testing.T) {
	tarballs, sources := t.TempDir(), t.TempDir()
	path := createArchive(t, tarballs, "pkg.tar", []entry{{name: "pkg/a", body: "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := archive.NewExtractor().Extract(ctx, path, sources, "pkg")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirNames(t, sources))
}
