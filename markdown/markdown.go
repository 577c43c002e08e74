// Package markdown renders the backend's AI-written markdown for the
// dashboard and the terminal.
package markdown

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const extensions = blackfriday.NoIntraEmphasis |
	blackfriday.Tables |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.SpaceHeadings

// ToHTML renders markdown. Raw HTML in the source is dropped.
func ToHTML(md string) template.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.SkipHTML | blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank,
	})
	out := blackfriday.Run([]byte(md), blackfriday.WithExtensions(extensions), blackfriday.WithRenderer(renderer))
	return template.HTML(out)
}

// ToText renders markdown as plain text for a terminal.
func ToText(md string) string {
	text, err := HTMLToText(string(ToHTML(md)))
	if err != nil {
		return md
	}
	return text
}

var blankLines = regexp.MustCompile(`\n{3,}`)
var spaces = regexp.MustCompile(`[ \t\r\n]+`)
var trailing = regexp.MustCompile(`[ \t]+\n`)

// HTMLToText flattens an HTML fragment into readable text.
func HTMLToText(src string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"})
	if err != nil {
		return "", err
	}
	w := &textWriter{}
	for _, n := range nodes {
		w.walk(n, 0)
	}
	out := trailing.ReplaceAllString(w.b.String(), "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

type textWriter struct {
	b   strings.Builder
	pre int
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Body, atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Table, atom.Thead, atom.Tbody, atom.Tr:
		return true
	}
	return false
}

func (w *textWriter) newline() {
	if s := w.b.String(); s != "" && !strings.HasSuffix(s, "\n") {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) walk(n *html.Node, depth int) {
	switch n.Type {
	case html.TextNode:
		if w.pre > 0 {
			w.b.WriteString(n.Data)
			return
		}
		if strings.TrimSpace(n.Data) == "" && (n.Parent == nil || isBlock(n.Parent.DataAtom)) {
			return
		}
		w.b.WriteString(spaces.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode, html.DocumentNode:
	default:
		return
	}

	children := func(d int) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, d)
		}
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.newline()
		w.b.WriteByte('\n')
		children(depth)
		w.b.WriteString("\n\n")
	case atom.P:
		if !strings.HasSuffix(w.b.String(), "- ") {
			w.newline()
		}
		children(depth)
		w.b.WriteString("\n\n")
	case atom.Br:
		w.b.WriteByte('\n')
	case atom.Hr:
		w.newline()
		w.b.WriteString("----\n")
	case atom.Pre:
		w.newline()
		w.pre++
		children(depth)
		w.pre--
		w.newline()
		w.b.WriteByte('\n')
	case atom.Ul, atom.Ol:
		children(depth + 1)
		w.newline()
		w.b.WriteByte('\n')
	case atom.Li:
		w.newline()
		if depth > 1 {
			w.b.WriteString(strings.Repeat("  ", depth-1))
		}
		w.b.WriteString("- ")
		children(depth)
	case atom.Tr:
		w.newline()
		children(depth)
	case atom.Td, atom.Th:
		children(depth)
		w.b.WriteString("\t")
	default:
		children(depth)
	}
}
