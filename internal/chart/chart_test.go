package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/NissesSenap/chartembed/internal/config"
	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() configtree.Mapping {
	return configtree.Mapping{
		"backgroundColor": configtree.String("white"),
		"series": configtree.Mapping{
			"label": configtree.Mapping{"show": configtree.Scalar{Value: true}},
		},
		"darkModeConfig": configtree.Mapping{
			"backgroundColor": configtree.String("black"),
		},
	}
}

func newTestBuilder(strict bool) *Builder {
	b := NewBuilder(testDefaults(), config.DefaultConfig().Render, strict, logging.Discard())
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("chart-%d", n)
	}
	return b
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   configtree.Kind
	}{
		{"yaml", "title:\n  text: Sales\n", configtree.KindMapping},
		{"json", `{"title": {"text": "Sales"}, "series": [{"type": "bar"}]}`, configtree.KindMapping},
		{"empty", "", configtree.KindMapping},
		{"list", "- a\n- b\n", configtree.KindSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse([]byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, configtree.KindOf(tree))
		})
	}
}

func TestParse_EvaluationError(t *testing.T) {
	_, err := Parse([]byte("title: {text: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEvaluation)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, err.Error(), ErrEvaluation.Error())
}

func TestBuilder_Build(t *testing.T) {
	b := newTestBuilder(false)

	c, err := b.Build([]byte(`
figcaption: Quarterly revenue
renderOptions: {renderer: svg}
series:
  - type: bar
    label: {color: red}
    data: [1, 2, 3]
darkModeConfig:
  figcaption: Quarterly revenue (dark)
`))
	require.NoError(t, err)

	assert.Equal(t, "chart-1", c.ID)
	assert.Equal(t, "100%", c.Width)
	assert.Equal(t, "400px", c.Height)
	assert.Equal(t, 16, c.Debounce)

	assert.Equal(t, "Quarterly revenue", c.Light.Caption)
	assert.Equal(t, "Quarterly revenue (dark)", c.Dark.Caption)
	assert.JSONEq(t, `{"renderer": "svg"}`, string(c.Light.RenderOptions))

	light := decode(t, c.Light.Option)
	dark := decode(t, c.Dark.Option)
	assert.Equal(t, "white", light["backgroundColor"])
	assert.Equal(t, "black", dark["backgroundColor"])
	for _, option := range []map[string]any{light, dark} {
		assert.NotContains(t, option, "darkModeConfig")
		assert.NotContains(t, option, "figcaption")
		assert.NotContains(t, option, "renderOptions")
		assert.Equal(t, []any{map[string]any{
			"type":  "bar",
			"label": map[string]any{"show": true, "color": "red"},
			"data":  []any{1.0, 2.0, 3.0},
		}}, option["series"])
	}
}

func TestBuilder_BuildDoesNotMutateDefaults(t *testing.T) {
	b := newTestBuilder(false)
	before := b.defaults.Clone()

	_, err := b.Build([]byte(`{series: [{type: line}], darkModeConfig: {grid: {top: 1}}}`))
	require.NoError(t, err)

	assert.True(t, configtree.Equal(before, b.defaults))
}

func TestBuilder_BuildErrors(t *testing.T) {
	b := newTestBuilder(false)

	_, err := b.Build([]byte("{unclosed"))
	assert.ErrorIs(t, err, ErrEvaluation)

	_, err = b.Build([]byte("- a\n- b\n"))
	assert.ErrorIs(t, err, configtree.ErrStructural)
}

func TestBuilder_WriteFallsBack(t *testing.T) {
	b := newTestBuilder(false)

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf, []byte("- not\n- a mapping\n")))

	out := buf.String()
	assert.Contains(t, out, `class="chartembed-error"`)
	assert.Contains(t, out, "- not\n- a mapping")
	assert.NotContains(t, out, "<script")
}

func TestBuilder_WriteStrict(t *testing.T) {
	b := newTestBuilder(true)

	var buf bytes.Buffer
	err := b.Write(&buf, []byte("{unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEvaluation)
	assert.Empty(t, buf.String())
}

func TestBuilder_Write(t *testing.T) {
	b := newTestBuilder(true)

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf, []byte("title: {text: Sales}\nfigcaption: Sales by month\n")))

	out := buf.String()
	assert.Contains(t, out, `<figure class="chartembed" id="chart-1-figure">`)
	assert.Contains(t, out, "Sales by month</figcaption>")
}

func TestBuilder_OneFailureDoesNotAffectOthers(t *testing.T) {
	b := newTestBuilder(false)

	var bad, good bytes.Buffer
	require.NoError(t, b.Write(&bad, []byte("42")))
	require.NoError(t, b.Write(&good, []byte("series: [{type: pie}]")))

	assert.Contains(t, bad.String(), "chartembed-error")
	assert.Contains(t, good.String(), "<figure")
}

func TestNewBuilder_NilArguments(t *testing.T) {
	b := NewBuilder(nil, config.Render{}, false, nil)
	assert.NotNil(t, b.defaults)
	assert.NotNil(t, b.logger)

	_, err := b.Build([]byte("a: 1"))
	require.NoError(t, err)
}
