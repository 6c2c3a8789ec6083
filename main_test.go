package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = newApp(&out, &errOut).Run(append([]string{"jackc"}, args...))
	return out.String(), errOut.String(), err
}

func TestAppCompilesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)

	_, _, err := runApp(t, "compile", "--no-color", "--config", filepath.Join(dir, "none.yaml"), dir)
	require.Error(t, err, "an explicit config file must exist")

	_, stderr, err := runApp(t, "compile", "--no-color", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Compiling file")
	assert.FileExists(t, filepath.Join(dir, "Main.vm"))
}

func TestAppFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)

	stdout, _, err := runApp(t, "--no-color", "--mode", "xml", "--stdout", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "<class>")

	_, _, err = runApp(t, "--no-color", "-d", path, "-o", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out", "Main.vm"))

	_, _, err = runApp(t, "--no-color", "tokens", path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "MainT.xml"))
}

func TestAppConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	config := writeFile(t, filepath.Join(dir, "jackc.yaml"), "mode: xml\nverbose: true\ncolor: false\n")

	_, stderr, err := runApp(t, "--config", config, path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "Main.xml"))
	assert.Contains(t, stderr, "Compiling subroutineDec")

	_, _, err = runApp(t, "--config", config, "--mode", "vm", path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "Main.vm"), "flags override the config file")
}

func TestAppErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Broken.jack"), brokenSource)

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"No input", []string{"--no-color"}},
		{"Missing input", []string{"--no-color", filepath.Join(dir, "missing.jack")}},
		{"Unknown mode", []string{"--no-color", "--mode", "asm", dir}},
		{"Broken class", []string{"--no-color", dir}},
		{"Empty directory", []string{"--no-color", t.TempDir()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runApp(t, tc.args...)
			require.Error(t, err)
			var exitCoder cli.ExitCoder
			require.ErrorAs(t, err, &exitCoder)
			assert.Equal(t, 1, exitCoder.ExitCode())
		})
	}
	_, err := os.Stat(filepath.Join(dir, "Broken.vm"))
	assert.True(t, os.IsNotExist(err))
}
