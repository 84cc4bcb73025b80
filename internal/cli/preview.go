package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/rerender"
	"github.com/NissesSenap/chartembed/internal/resolver"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

type PreviewCmd struct {
	File     string `arg:"" help:"Chart config (YAML or JSON) or a Markdown document" type:"existingfile"`
	Index    int    `help:"Chart block to use when FILE is a Markdown document" default:"0"`
	Scheme   string `help:"Color scheme; auto follows the terminal background" enum:"auto,light,dark" default:"auto"`
	Defaults string `help:"YAML or JSON file replacing the configured chart defaults" type:"existingfile"`
}

// Run renders the chart once, then again after every terminal resize
// (SIGWINCH) or color scheme change notification (SIGUSR1), until
// interrupted.
func (c *PreviewCmd) Run(cli *CLI) error {
	cfg, logger, err := cli.load(c.Defaults)
	if err != nil {
		return err
	}
	defaults, user, err := loadChart(cfg, c.File, c.Index)
	if err != nil {
		return err
	}
	schemes, err := schemeSource(c.Scheme)
	if err != nil {
		return err
	}

	view := &terminalView{out: cli.out(), width: terminalWidth}
	loop := rerender.New(defaults, user, schemes, view,
		rerender.WithDelay(time.Duration(cfg.Render.DebounceMS)*time.Millisecond),
		rerender.WithLogger(logger),
	)
	if err := loop.RenderNow(); err != nil {
		return err
	}

	ctx := cli.Context()
	resize, schemeChange := watchSignals(ctx)
	err = loop.Run(ctx, resize, schemeChange)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// schemeSource maps the --scheme flag to a SchemeSource. "auto" asks the
// terminal on every render.
func schemeSource(name string) (rerender.SchemeSource, error) {
	if name == "auto" {
		return rerender.SchemeFunc(func() resolver.ColorScheme {
			if lipgloss.HasDarkBackground() {
				return resolver.Dark
			}
			return resolver.Light
		}), nil
	}

	scheme, err := resolver.ParseColorScheme(name)
	if err != nil {
		return nil, err
	}
	return rerender.SchemeFunc(func() resolver.ColorScheme { return scheme }), nil
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// terminalView draws a resolved chart configuration as a framed JSON panel.
type terminalView struct {
	out   io.Writer
	width func() int
}

func (v *terminalView) Render(f rerender.Frame) error {
	data, err := json.Marshal(configtree.ToAny(f.Config))
	if err != nil {
		return err
	}
	body := pretty.Pretty(data)

	accent := lipgloss.Color("25")
	if f.Scheme == resolver.Dark {
		accent = lipgloss.Color("214")
		body = pretty.Color(body, pretty.TerminalStyle)
	}

	title := f.Caption
	if title == "" {
		title = "chart"
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).
		Render(fmt.Sprintf("%s (%s)", title, f.Scheme))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if w := v.width(); w > 4 {
		panel = panel.Width(w - 2)
	}

	_, err = fmt.Fprintln(v.out, panel.Render(header+"\n\n"+string(body)))
	return err
}
