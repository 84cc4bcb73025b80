package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NissesSenap/chartembed/internal/batch"
	"github.com/NissesSenap/chartembed/internal/chart"
	"github.com/NissesSenap/chartembed/internal/config"
	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/document"
	"github.com/NissesSenap/chartembed/internal/resolver"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

type RenderCmd struct {
	Files    []string `arg:"" help:"Markdown documents to render" type:"existingfile"`
	OutDir   string   `help:"Output directory" default:"." type:"path"`
	Defaults string   `help:"YAML or JSON file replacing the configured chart defaults" type:"existingfile"`
	Strict   bool     `help:"Fail on the first broken chart instead of showing its source"`
}

type ResolveCmd struct {
	File     string `arg:"" help:"Chart config (YAML or JSON) or a Markdown document" type:"existingfile"`
	Index    int    `help:"Chart block to use when FILE is a Markdown document" default:"0"`
	Scheme   string `help:"Color scheme" enum:"light,dark" default:"light"`
	Defaults string `help:"YAML or JSON file replacing the configured chart defaults" type:"existingfile"`
	Color    bool   `help:"Colorize the JSON output"`
}

type ConfigCmd struct {
	Init bool `help:"Write the default configuration to the config path"`
}

type VersionCmd struct{}

func (c *RenderCmd) Run(cli *CLI) error {
	cfg, logger, err := cli.load(c.Defaults)
	if err != nil {
		return err
	}
	defaults, err := cfg.ChartDefaults()
	if err != nil {
		return err
	}

	builder := chart.NewBuilder(defaults, cfg.Render, cfg.Strict || c.Strict, logger)
	conv := document.NewConverter(cfg.Language, builder)
	jobs, err := batch.JobsFor(c.Files, c.OutDir)
	if err != nil {
		return err
	}
	pool := batch.NewDocumentPool(jobs,
		cfg.Batch.DocumentsPerSecond, cfg.Batch.MaxConcurrent, logger)

	return pool.ConvertAll(cli.Context(), conv)
}

func (c *ResolveCmd) Run(cli *CLI) error {
	cfg, _, err := cli.load(c.Defaults)
	if err != nil {
		return err
	}
	scheme, err := resolver.ParseColorScheme(c.Scheme)
	if err != nil {
		return err
	}
	defaults, user, err := loadChart(cfg, c.File, c.Index)
	if err != nil {
		return err
	}

	resolved, err := resolver.Resolve(defaults, user, scheme)
	if err != nil {
		return err
	}
	data, err := json.Marshal(configtree.ToAny(resolved))
	if err != nil {
		return err
	}

	data = pretty.Pretty(data)
	if c.Color {
		data = pretty.Color(data, pretty.TerminalStyle)
	}
	_, err = cli.out().Write(data)
	return err
}

func (c *ConfigCmd) Run(cli *CLI) error {
	if c.Init {
		if err := config.DefaultConfig().Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		_, err := fmt.Fprintf(cli.out(), "Wrote %s\n", config.ConfigPath())
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cli.out().Write(data)
	return err
}

func (c *VersionCmd) Run(cli *CLI) error {
	_, err := fmt.Fprintf(cli.out(), "chartembed version: %s\n", Version)
	return err
}

// loadChart returns the chart defaults and the config of the chart in path.
// Markdown documents are searched for their index-th chart block.
func loadChart(cfg *config.Config, path string, index int) (configtree.Mapping, configtree.Tree, error) {
	defaults, err := cfg.ChartDefaults()
	if err != nil {
		return nil, nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		blocks := document.NewConverter(cfg.Language, nil).Blocks(source)
		if index < 0 || index >= len(blocks) {
			return nil, nil, fmt.Errorf("%s has %d %s blocks, no block %d", path, len(blocks), cfg.Language, index)
		}
		source = blocks[index].Source
	}

	user, err := chart.Parse(source)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return defaults, user, nil
}
