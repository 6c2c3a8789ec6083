package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `// Entry point.
class Main {
	function void main() {
		do Output.printInt(Math.abs(-7));
		return;
	}
}
`

const brokenSource = `class Broken {
	function void main() {
		let missing = 1;
		return;
	}
}
`

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jack"), "")
	writeFile(t, filepath.Join(dir, "a.jack"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jack"), 0755))

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.jack"), filepath.Join(dir, "b.jack")}, files)

	files, err = collectFiles(filepath.Join(dir, "b.jack"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.jack")}, files)

	_, err = collectFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestGetOutputPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("src", "Main.vm"), getOutputPath(filepath.Join("src", "Main.jack"), cfg))

	cfg.Mode = TokensMode
	assert.Equal(t, filepath.Join("src", "MainT.xml"), getOutputPath(filepath.Join("src", "Main.jack"), cfg))

	cfg.Mode = XMLMode
	cfg.Output = "build"
	assert.Equal(t, filepath.Join("build", "Main.xml"), getOutputPath(filepath.Join("src", "Main.jack"), cfg))

	assert.Equal(t, "Main", getClassName(filepath.Join("src", "Main.jack")))
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)
	brokenPath := writeFile(t, filepath.Join(dir, "Broken.jack"), brokenSource)

	var log bytes.Buffer
	err := compileAll(context.Background(), []string{mainPath, brokenPath}, DefaultConfig(), nil, NewLogger(&log, InfoLevel))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	vm, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	assert.Equal(t, `function Main.main 0
push constant 7
neg
call Math.abs 1
call Output.printInt 1
pop temp 0
push constant 0
return
`, string(vm))

	assert.NoFileExists(t, filepath.Join(dir, "Broken.vm"), "failed classes leave no output")
	assert.Contains(t, log.String(), "Saved as")
	assert.Contains(t, log.String(), "Failed to compile")
	assert.Contains(t, log.String(), "unknown symbol")
}

func TestCompileAllOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, filepath.Join(dir, "src", "Main.jack"), mainSource)

	cfg := DefaultConfig()
	cfg.Mode = XMLMode
	cfg.Output = filepath.Join(dir, "build")
	require.NoError(t, compileAll(context.Background(), []string{mainPath}, cfg, nil, nil))

	tree, err := os.ReadFile(filepath.Join(dir, "build", "Main.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(tree), "<doStatement>")
}

func TestCompileAllStdout(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, filepath.Join(dir, "Main.jack"), mainSource)

	cfg := DefaultConfig()
	cfg.Stdout = true
	var stdout bytes.Buffer
	require.NoError(t, compileAll(context.Background(), []string{mainPath}, cfg, &stdout, nil))

	assert.Contains(t, stdout.String(), "function Main.main 0\n")
	assert.NoFileExists(t, filepath.Join(dir, "Main.vm"))
}

func TestClassNameMismatchWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "Other.jack"), mainSource)

	var log bytes.Buffer
	_, err := processFile(path, DefaultConfig(), nil, NewLogger(&log, WarnLevel))
	require.NoError(t, err)
	assert.Contains(t, log.String(), "declares class Main")
	assert.FileExists(t, filepath.Join(dir, "Other.vm"))
}
