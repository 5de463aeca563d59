//go:build e2e

package e2e_test

import (
	"archive/tar"
	"compress/gzip"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var stageBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "stage-e2e-*")
	if err != nil {
		panic(err)
	}

	stageBinary = filepath.Join(tmpDir, "stage")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", stageBinary, "./cmd/stage")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build stage binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mktgz": cmdMktgz,
		},
	})
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	binDir := filepath.Dir(stageBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	return nil
}

// cmdMktgz packs a directory into a gzip compressed tarball: mktgz ARCHIVE DIR.
// Members are named after DIR's base name, the way release tarballs are laid out.
func cmdMktgz(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mktgz")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: mktgz ARCHIVE DIR")
	}

	out, err := os.Create(ts.MkAbs(args[0]))
	ts.Check(err)
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	root := ts.MkAbs(args[1])
	parent := filepath.Dir(root)
	ts.Check(filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			data, err := os.ReadFile(path) //nolint:gosec // Test fixture path
			if err != nil {
				return err
			}
			if _, err := tw.Write(data); err != nil {
				return err
			}
		}
		return nil
	}))

	ts.Check(tw.Close())
	ts.Check(gz.Close())
	ts.Check(out.Close())
}
