package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func compileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: DefaultConfigFile,
			Usage: "YAML config file, ignored when the default one does not exist",
		},
		&cli.StringFlag{
			Name:    "d",
			Aliases: []string{"input"},
			Usage:   ".jack file to compile or directory containing .jack files",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "output to produce: vm, xml (parse tree) or tokens",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory for the output files, defaults to next to each source",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "number of classes compiled in parallel",
		},
		&cli.BoolFlag{
			Name:  "stdout",
			Usage: "write the output to stdout instead of files",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "trace every grammar rule and symbol",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable coloured log output",
		},
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "jackc",
		Usage:                  "Compile Jack classes to VM code",
		ArgsUsage:              "<file.jack|dir>...",
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// errors are reported by main, so tests can run the app in-process
		ExitErrHandler: func(*cli.Context, error) {},
		Flags:          compileFlags(),
		Action:         compileAction(""),
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Aliases:   []string{"c"},
				Usage:     "Compile .jack files or directories",
				ArgsUsage: "<file.jack|dir>...",
				Flags:     compileFlags(),
				Action:    compileAction(""),
			},
			{
				Name:      "tokens",
				Usage:     "Dump the token stream of each class as XML",
				ArgsUsage: "<file.jack|dir>...",
				Flags:     compileFlags(),
				Action:    compileAction(TokensMode),
			},
		},
	}
}

func configFromContext(c *cli.Context) (Config, error) {
	cfg, err := LoadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("mode") {
		cfg.Mode = Mode(c.String("mode"))
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("jobs") {
		cfg.Jobs = c.Int("jobs")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	if c.IsSet("no-color") {
		cfg.Color = !c.Bool("no-color")
	}
	cfg.Stdout = c.Bool("stdout")
	return cfg, cfg.Validate()
}

func compileAction(mode Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := configFromContext(c)
		if err != nil {
			return cli.Exit(color.RedString("Error: %s", err), 1)
		}
		if mode != "" {
			cfg.Mode = mode
		}
		if !cfg.Color {
			color.NoColor = true
		}

		level := InfoLevel
		if cfg.Verbose {
			level = DebugLevel
		}
		log := NewLogger(c.App.ErrWriter, level)

		inputs := c.Args().Slice()
		if d := c.String("d"); d != "" {
			inputs = append(inputs, d)
		}
		if len(inputs) == 0 {
			cli.ShowAppHelp(c)
			return cli.Exit(color.RedString("Error: no file or directory specified"), 1)
		}

		var files []string
		for _, input := range inputs {
			found, err := collectFiles(input)
			if err != nil {
				return cli.Exit(color.RedString("Error: %s", err), 1)
			}
			files = append(files, found...)
		}
		if len(files) == 0 {
			return cli.Exit(color.RedString("Error: no .jack files found"), 1)
		}

		if err := compileAll(c.Context, files, cfg, c.App.Writer, log); err != nil {
			return cli.Exit(color.RedString("Error: %s", err), 1)
		}
		return nil
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			code = exitCoder.ExitCode()
		}
		os.Exit(code)
	}
}
