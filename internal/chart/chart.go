// Package chart builds the HTML fragment of a single chart block.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/NissesSenap/chartembed/internal/config"
	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/fragment"
	"github.com/NissesSenap/chartembed/internal/logging"
	"github.com/NissesSenap/chartembed/internal/resolver"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ErrEvaluation is wrapped by every EvaluationError.
var ErrEvaluation = errors.New("chart config evaluation failed")

// EvaluationError reports a chart block that could not be decoded into a
// configuration tree.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrEvaluation, e.Err)
}

func (e *EvaluationError) Unwrap() []error { return []error{ErrEvaluation, e.Err} }

// Parse decodes the YAML or JSON body of a chart block. An empty body is an
// empty configuration.
func Parse(source []byte) (configtree.Tree, error) {
	var decoded any
	if err := yaml.Unmarshal(source, &decoded); err != nil {
		return nil, &EvaluationError{Err: err}
	}
	if decoded == nil {
		return configtree.Mapping{}, nil
	}

	tree, err := configtree.FromAny(decoded)
	if err != nil {
		return nil, &EvaluationError{Err: err}
	}
	return tree, nil
}

// Builder turns chart blocks into fragments. It is safe for concurrent use:
// its defaults are never modified.
type Builder struct {
	defaults configtree.Mapping
	render   config.Render
	strict   bool
	logger   *log.Logger
	newID    func() string
}

// NewBuilder creates a Builder that resolves every chart against defaults.
func NewBuilder(defaults configtree.Mapping, render config.Render, strict bool, logger *log.Logger) *Builder {
	if defaults == nil {
		defaults = configtree.Mapping{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		defaults: defaults,
		render:   render,
		strict:   strict,
		logger:   logger,
		newID:    fragment.NewID,
	}
}

// Build resolves a chart for both color schemes.
func (b *Builder) Build(source []byte) (fragment.Chart, error) {
	user, err := Parse(source)
	if err != nil {
		return fragment.Chart{}, err
	}

	c := fragment.Chart{
		ID:       b.newID(),
		Width:    b.render.Width,
		Height:   b.render.Height,
		Debounce: b.render.DebounceMS,
	}
	for _, scheme := range []resolver.ColorScheme{resolver.Light, resolver.Dark} {
		resolved, err := resolver.Resolve(b.defaults, user, scheme)
		if err != nil {
			return fragment.Chart{}, fmt.Errorf("failed to resolve %s config: %w", scheme, err)
		}
		variant, err := fragment.Split(resolved)
		if err != nil {
			return fragment.Chart{}, err
		}
		if scheme == resolver.Dark {
			c.Dark = variant
		} else {
			c.Light = variant
		}
	}
	return c, nil
}

// Write writes the fragment of a chart block to w. A chart that cannot be
// built is logged and replaced by its raw source, unless the builder is
// strict, in which case the error is returned and nothing is written.
func (b *Builder) Write(w io.Writer, source []byte) error {
	c, err := b.Build(source)
	if err == nil {
		var buf bytes.Buffer
		if err = fragment.Write(&buf, c); err == nil {
			_, err = w.Write(buf.Bytes())
			return err
		}
	}

	if b.strict {
		return err
	}
	id := b.newID()
	b.logger.Error("chart replaced by its source", "chart", id, "err", err)
	return fragment.WriteFallback(w, id, string(source), err)
}
