package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "jackc.yaml"

type Mode string

const (
	VMMode     Mode = "vm"
	XMLMode    Mode = "xml"
	TokensMode Mode = "tokens"
)

// Suffix replaces the .jack extension of a source file.
func (m Mode) Suffix() string {
	switch m {
	case XMLMode:
		return ".xml"
	case TokensMode:
		return "T.xml"
	default:
		return ".vm"
	}
}

func (m Mode) Valid() bool {
	switch m {
	case VMMode, XMLMode, TokensMode:
		return true
	}
	return false
}

type Config struct {
	Mode Mode `yaml:"mode"`
	// Output is the directory outputs go to; empty means next to each source.
	Output  string `yaml:"output"`
	Jobs    int    `yaml:"jobs"`
	Verbose bool   `yaml:"verbose"`
	Color   bool   `yaml:"color"`

	Stdout bool `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{Mode: VMMode, Jobs: 4, Color: true}
}

func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return errors.Errorf("unknown mode %q, want one of vm, xml, tokens", c.Mode)
	}
	if c.Jobs < 1 {
		return errors.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}

// LoadConfig reads a YAML config on top of the defaults. A missing file is
// only an error when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "cannot open config %q", path)
	}
	defer file.Close()

	if err := decodeConfig(file, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "cannot read config %q", path)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	err := decoder.Decode(cfg)
	if errors.Is(err, io.EOF) {
		// empty file
		return nil
	}
	return err
}
