package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NissesSenap/chartembed/internal/config"
	"github.com/NissesSenap/chartembed/internal/logging"
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// Version is set at build time with -ldflags "-X ...cli.Version=..."
var Version = "dev"

// CLI is the main CLI structure with embedded context
type CLI struct {
	ctx    context.Context // Store context for commands to use
	stdout io.Writer
	stderr io.Writer

	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file" placeholder:"LEVEL"`

	Render  RenderCmd  `cmd:"render" help:"Render Markdown documents with chart blocks to HTML"`
	Resolve ResolveCmd `cmd:"resolve" help:"Print the resolved configuration of a chart"`
	Preview PreviewCmd `cmd:"preview" help:"Re-render a chart in the terminal on resize and color scheme change"`
	Config  ConfigCmd  `cmd:"config" help:"Show or initialize the configuration"`
	Version VersionCmd `cmd:"version" help:"Show version"`
}

// Context returns the CLI's context for use by commands.
// This allows commands to access the context without directly accessing
// the unexported ctx field.
func (c *CLI) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *CLI) out() io.Writer {
	if c.stdout == nil {
		return os.Stdout
	}
	return c.stdout
}

func (c *CLI) errOut() io.Writer {
	if c.stderr == nil {
		return os.Stderr
	}
	return c.stderr
}

// load reads the configuration, optionally replaces the chart defaults with
// the content of defaultsFile, and builds the logger.
func (c *CLI) load(defaultsFile string) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if defaultsFile != "" {
		if err := cfg.LoadDefaultsFile(defaultsFile); err != nil {
			return nil, nil, err
		}
	}

	level := cfg.LogLevel
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	logger, err := logging.New(c.errOut(), level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// ExecuteWithContext executes the CLI with a context that can be cancelled
func ExecuteWithContext(ctx context.Context) error {
	cli := &CLI{ctx: ctx}
	kongCtx := kong.Parse(cli,
		kong.Name("chartembed"),
		kong.Description("Render chart blocks in Markdown documents as responsive HTML fragments."),
		kong.UsageOnError(),
	)

	// Bind CLI instance so commands can access the context
	return kongCtx.Run(cli)
}

// Execute executes the CLI with a background context
func Execute() error {
	return ExecuteWithContext(context.Background())
}
