package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

func getOutputPath(filePath string, cfg Config) string {
	outputPath := removeExtension(filePath) + cfg.Mode.Suffix()
	if cfg.Output != "" {
		outputPath = filepath.Join(cfg.Output, filepath.Base(outputPath))
	}
	return outputPath
}

// compileFile translates one class from r into w and returns the declared class
// name. On error w holds partial output.
func compileFile(name string, r io.Reader, w io.Writer, mode Mode, log *Logger) (className string, err error) {
	tokenizer, err := NewNamedTokenizer(name, r)
	if err != nil {
		return "", err
	}

	switch mode {
	case TokensMode:
		writer := NewXMLWriter(w)
		writer.WriteTokens(tokenizer.Tokens())
		return "", writer.Close()
	case XMLMode:
		writer := NewXMLWriter(w)
		compiler := NewJackCompiler(tokenizer, discardEmitter{}, WithParseTree(writer), WithUndeclaredNames(), WithLogger(log))
		if err := compiler.Compile(); err != nil {
			return compiler.ClassName(), err
		}
		return compiler.ClassName(), writer.Close()
	default:
		writer := NewVMWriter(w)
		compiler := NewJackCompiler(tokenizer, writer, WithLogger(log))
		if err := compiler.Compile(); err != nil {
			return compiler.ClassName(), err
		}
		return compiler.ClassName(), writer.Close()
	}
}

// processFile compiles path into memory first, so nothing is written for a
// class that fails to compile.
func processFile(path string, cfg Config, stdout io.Writer, log *Logger) (outputPath string, err error) {
	handle, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "could not open file %q for reading", path)
	}
	defer handle.Close()

	var output bytes.Buffer
	className, err := compileFile(path, handle, &output, cfg.Mode, log)
	if err != nil {
		return "", err
	}
	if className != "" && className != getClassName(path) {
		log.Warnf("%q declares class %s", path, className)
	}

	if cfg.Stdout {
		_, err = output.WriteTo(stdout)
		return "-", err
	}

	outputPath = getOutputPath(path, cfg)
	if cfg.Output != "" {
		if err := os.MkdirAll(cfg.Output, 0755); err != nil {
			return outputPath, errors.Wrapf(err, "could not create output directory %q", cfg.Output)
		}
	}
	if err := os.WriteFile(outputPath, output.Bytes(), 0644); err != nil {
		return outputPath, errors.Wrapf(err, "could not write output file %q", outputPath)
	}
	return outputPath, nil
}

// collectFiles expands directories into the .jack files they contain, sorted
// by name.
func collectFiles(fileOrDir string) (files []string, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat file/dir %q", fileOrDir)
	}

	if !fileOrDirStat.IsDir() {
		return []string{fileOrDir}, nil
	}

	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open directory %q", fileOrDir)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// compileAll compiles every file on its own compiler, up to cfg.Jobs at a
// time. A failing class does not stop the others.
func compileAll(ctx context.Context, files []string, cfg Config, stdout io.Writer, log *Logger) error {
	jobs := cfg.Jobs
	if cfg.Stdout {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var failed int32
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Infof("Compiling file %q", file)
			outputPath, err := processFile(file, cfg, stdout, log)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				log.Errorf("Failed to compile %q: %v", file, err)
				return nil
			}
			log.Infof("Saved as %q", outputPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := atomic.LoadInt32(&failed); n > 0 {
		return errors.Errorf("%d of %d files failed to compile", n, len(files))
	}
	return nil
}
