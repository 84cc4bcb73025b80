package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NissesSenap/chartembed/internal/chart"
	"github.com/NissesSenap/chartembed/internal/config"
	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# Report\n" +
	"\n" +
	"Some text.\n" +
	"\n" +
	"```echarts\n" +
	"title: {text: First}\n" +
	"```\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"<hi>\")\n" +
	"```\n" +
	"\n" +
	"```echarts\n" +
	"{\"title\": {\"text\": \"Second\"}}\n" +
	"```\n"

// stubCharts records the chart blocks it is asked to write.
type stubCharts struct {
	sources []string
	err     error
}

func (s *stubCharts) Write(w io.Writer, source []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sources = append(s.sources, string(source))
	_, err := fmt.Fprintf(w, "<div class=\"stub\">%d</div>\n", len(s.sources))
	return err
}

func TestConverter_Convert(t *testing.T) {
	charts := &stubCharts{}
	conv := NewConverter("echarts", charts)

	var out strings.Builder
	require.NoError(t, conv.Convert([]byte(sample), &out))

	html := out.String()
	assert.Contains(t, html, "<h1>Report</h1>")
	assert.Contains(t, html, "<div class=\"stub\">1</div>")
	assert.Contains(t, html, "<div class=\"stub\">2</div>")
	assert.Contains(t, html, "<pre><code class=\"language-go\">fmt.Println(&quot;&lt;hi&gt;&quot;)\n</code></pre>")
	assert.NotContains(t, html, "language-echarts")

	assert.Equal(t, []string{
		"title: {text: First}\n",
		"{\"title\": {\"text\": \"Second\"}}\n",
	}, charts.sources)
}

func TestConverter_ConvertPlainFence(t *testing.T) {
	conv := NewConverter("echarts", &stubCharts{})

	var out strings.Builder
	require.NoError(t, conv.Convert([]byte("```\nplain <text>\n```\n"), &out))
	assert.Equal(t, "<pre><code>plain &lt;text&gt;\n</code></pre>\n", out.String())
}

func TestConverter_ConvertError(t *testing.T) {
	conv := NewConverter("echarts", &stubCharts{err: errors.New("boom")})

	var out strings.Builder
	err := conv.Convert([]byte(sample), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestConverter_Blocks(t *testing.T) {
	conv := NewConverter("echarts", &stubCharts{})

	blocks := conv.Blocks([]byte(sample))
	require.Len(t, blocks, 2)
	assert.Equal(t, 5, blocks[0].Line)
	assert.Equal(t, "title: {text: First}\n", string(blocks[0].Source))
	assert.Equal(t, 13, blocks[1].Line)
}

func TestConverter_CustomLanguage(t *testing.T) {
	charts := &stubCharts{}
	conv := NewConverter("chart", charts)

	var out strings.Builder
	require.NoError(t, conv.Convert([]byte(sample), &out))
	assert.Empty(t, charts.sources)
	assert.Contains(t, out.String(), "language-echarts")
}

func newBuilder(strict bool) *chart.Builder {
	defaults := configtree.Mapping{
		"series": configtree.Mapping{"label": configtree.Mapping{"show": configtree.Scalar{Value: true}}},
	}
	return chart.NewBuilder(defaults, config.DefaultConfig().Render, strict, logging.Discard())
}

func TestConverter_WithChartBuilder(t *testing.T) {
	conv := NewConverter("echarts", newBuilder(false))

	source := sample + "\n```echarts\n- broken\n```\n"
	var out strings.Builder
	require.NoError(t, conv.Convert([]byte(source), &out))

	html := out.String()
	assert.Equal(t, 2, strings.Count(html, "<figure class=\"chartembed\""))
	assert.Equal(t, 1, strings.Count(html, "chartembed-error"))
	assert.Contains(t, html, "- broken")
}

func TestConverter_WithStrictChartBuilder(t *testing.T) {
	conv := NewConverter("echarts", newBuilder(true))

	source := sample + "\n```echarts\n- broken\n```\n"
	var out strings.Builder
	err := conv.Convert([]byte(source), &out)
	assert.ErrorIs(t, err, configtree.ErrStructural)
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.md")
	output := filepath.Join(dir, "out", "report.html")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0644))

	conv := NewConverter("echarts", &stubCharts{})
	require.NoError(t, conv.ConvertFile(input, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>Report</h1>")
}

func TestConverter_ConvertFileErrors(t *testing.T) {
	dir := t.TempDir()
	conv := NewConverter("echarts", &stubCharts{err: errors.New("boom")})

	err := conv.ConvertFile(filepath.Join(dir, "missing.md"), filepath.Join(dir, "x.html"))
	require.Error(t, err)

	input := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0644))
	err = conv.ConvertFile(input, filepath.Join(dir, "x.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.md")

	_, statErr := os.Stat(filepath.Join(dir, "x.html"))
	assert.True(t, os.IsNotExist(statErr))
}
