// Package fragment turns resolved chart configurations into self-contained
// HTML fragments.
package fragment

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/resolver"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RenderOptionsKey holds the options passed to the chart engine's init
// call instead of its option object.
const RenderOptionsKey = "renderOptions"

// Variant is a resolved chart for one color scheme.
type Variant struct {
	Option        json.RawMessage `json:"option"`
	RenderOptions json.RawMessage `json:"renderOptions,omitempty"`
	Caption       string          `json:"caption"`
}

// Chart is everything a fragment needs.
type Chart struct {
	ID       string
	Width    string
	Height   string
	Debounce int // milliseconds
	Light    Variant
	Dark     Variant
}

// Caption returns the caption shown before the script first runs.
func (c Chart) Caption() string {
	if c.Light.Caption != "" {
		return c.Light.Caption
	}
	return c.Dark.Caption
}

// NewID returns a unique container id.
func NewID() string {
	return "chart-" + uuid.NewString()
}

// Split encodes a resolved configuration and separates the fields that the
// chart engine must not see.
func Split(resolved configtree.Mapping) (Variant, error) {
	data, err := json.Marshal(configtree.ToAny(resolved))
	if err != nil {
		return Variant{}, fmt.Errorf("failed to encode chart option: %w", err)
	}

	v := Variant{Caption: resolver.Caption(resolved)}
	if opts := gjson.GetBytes(data, RenderOptionsKey); opts.IsObject() {
		v.RenderOptions = json.RawMessage(opts.Raw)
	}

	for _, key := range []string{resolver.CaptionKey, RenderOptionsKey} {
		if data, err = sjson.DeleteBytes(data, key); err != nil {
			return Variant{}, fmt.Errorf("failed to strip %s: %w", key, err)
		}
	}
	v.Option = data
	return v, nil
}

type payload struct {
	Debounce int     `json:"debounce"`
	Light    Variant `json:"light"`
	Dark     Variant `json:"dark"`
}

// Write renders the fragment of c to w.
func Write(w io.Writer, c Chart) error {
	data, err := json.Marshal(payload{Debounce: c.Debounce, Light: c.Light, Dark: c.Dark})
	if err != nil {
		return fmt.Errorf("failed to encode chart payload: %w", err)
	}

	return chartTemplate.Execute(w, struct {
		Chart
		Payload template.JS
	}{
		Chart: c,
		// json.Marshal escapes <, > and &, so the payload cannot close the
		// script element.
		Payload: template.JS(data),
	})
}

// WriteFallback renders the raw chart configuration in place of a chart
// that could not be built.
func WriteFallback(w io.Writer, id, raw string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return fallbackTemplate.Execute(w, struct {
		ID    string
		Raw   string
		Error string
	}{id, raw, msg})
}
