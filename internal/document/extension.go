package document

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ChartWriter writes the replacement of a chart block.
type ChartWriter interface {
	Write(w io.Writer, source []byte) error
}

// chartExtension makes fenced code blocks tagged with a chart language
// render as chart fragments.
type chartExtension struct {
	language string
	charts   ChartWriter
}

func (e *chartExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		// Higher priority than the default HTML renderer (1000)
		util.Prioritized(newFenceRenderer(e.language, e.charts), 100),
	))
}

// fenceRenderer renders chart blocks through a ChartWriter and every other
// fenced code block the way goldmark's HTML renderer does.
type fenceRenderer struct {
	html.Config
	language []byte
	charts   ChartWriter
}

func newFenceRenderer(language string, charts ChartWriter) *fenceRenderer {
	return &fenceRenderer{
		Config:   html.NewConfig(),
		language: []byte(language),
		charts:   charts,
	}
}

func (r *fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fenceRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	language := n.Language(source)

	if bytes.Equal(language, r.language) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if err := r.charts.Write(w, blockBody(n, source)); err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	}

	if entering {
		_, _ = w.WriteString("<pre><code")
		if language != nil {
			_, _ = w.WriteString(` class="language-`)
			r.Writer.Write(w, language)
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			r.Writer.RawWrite(w, line.Value(source))
		}
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}

// blockBody returns the text between the fences of a code block.
func blockBody(n *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.Bytes()
}
