// Package document converts Markdown documents to HTML, replacing fenced
// chart blocks with chart fragments.
package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Block is a chart block found in a document.
type Block struct {
	Line   int // 1-based line of the opening fence
	Source []byte
}

// Converter renders Markdown documents.
type Converter struct {
	language string
	md       goldmark.Markdown
}

// NewConverter creates a Converter for fenced blocks tagged with language.
func NewConverter(language string, charts ChartWriter) *Converter {
	return &Converter{
		language: language,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				&chartExtension{language: language, charts: charts},
			),
		),
	}
}

// Convert renders source to w. It stops at the first chart error that the
// chart writer returns.
func (c *Converter) Convert(source []byte, w io.Writer) error {
	return c.md.Convert(source, w)
}

// ConvertFile converts the Markdown file at input and writes the HTML to
// output, creating its directory if needed.
func (c *Converter) ConvertFile(input, output string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.Convert(source, &buf); err != nil {
		return fmt.Errorf("failed to convert %s: %w", input, err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	return os.WriteFile(output, buf.Bytes(), 0644)
}

// Blocks returns the chart blocks of a document in order.
func (c *Converter) Blocks(source []byte) []Block {
	doc := c.md.Parser().Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(fence.Language(source)) != c.language {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, Block{
			Line:   lineOf(fence, source),
			Source: blockBody(fence, source),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// lineOf returns the 1-based line of the opening fence of n.
func lineOf(n *ast.FencedCodeBlock, source []byte) int {
	if n.Info == nil {
		return 0
	}
	return bytes.Count(source[:n.Info.Segment.Start], []byte("\n")) + 1
}
