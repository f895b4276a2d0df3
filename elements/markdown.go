package elements

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tessella/docvec/core"
)

// NewMarkdownSource parses Markdown and yields its top-level blocks as
// typed elements: headings become Title elements, list entries become
// ListItem elements, and every other block (paragraphs, block quotes, code
// blocks) becomes a Narrative element. Inline formatting is dropped; only
// the text content matters for chunking.
func NewMarkdownSource(markdown string) *SliceSource {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var elems []core.Element
	appendElement := func(kind core.ElementKind, content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		elems = append(elems, core.Element{
			Text:    content,
			Kind:    kind,
			Ordinal: len(elems),
		})
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch block := node.(type) {
		case *ast.Heading:
			appendElement(core.KindTitle, nodeText(block, source))
		case *ast.List:
			for item := block.FirstChild(); item != nil; item = item.NextSibling() {
				appendElement(core.KindListItem, nodeText(item, source))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			appendElement(core.KindNarrative, blockLines(node, source))
		default:
			appendElement(core.KindNarrative, nodeText(node, source))
		}
	}

	return NewSliceSource(elems)
}

// nodeText collects the text content of a node's inline children, joining
// nested blocks (e.g. paragraphs inside a list item) with single spaces.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			b.WriteString(blockLines(n, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockLines reads a code block's raw lines, which goldmark does not expose
// as inline Text nodes.
func blockLines(node ast.Node, source []byte) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}
