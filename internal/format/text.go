// Package format turns email bodies into plain text for summarization.
package format

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// HTML2Text renders an HTML document as readable plain text. Scripts, styles
// and the head are dropped. Block elements start new lines, list items are
// bulleted, and link targets are kept next to their text when they differ.
func HTML2Text(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	w := &textWriter{}
	w.walk(doc)

	return Normalize(w.buf.String()), nil
}

// Normalize collapses runs of blanks, trims every line and keeps at most one
// empty line between paragraphs.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRun.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")

	return strings.TrimSpace(newlineRun.ReplaceAllString(s, "\n\n"))
}

type textWriter struct {
	buf bytes.Buffer
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.buf.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			w.buf.WriteByte('\n')
			return
		case atom.Hr:
			w.buf.WriteString("\n---\n")
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				w.buf.WriteString(alt)
			}
			return
		case atom.Li:
			w.buf.WriteString("\n- ")
			w.children(n)
			w.buf.WriteByte('\n')
			return
		case atom.Td, atom.Th:
			w.children(n)
			w.buf.WriteByte(' ')
			return
		case atom.A:
			start := w.buf.Len()
			w.children(n)
			text := strings.TrimSpace(w.buf.String()[start:])
			href := attr(n, "href")
			if href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "mailto:") && text != href {
				fmt.Fprintf(&w.buf, " (%s)", href)
			}
			return
		}

		if isBlock(n.DataAtom) {
			w.buf.WriteByte('\n')
			w.children(n)
			w.buf.WriteByte('\n')
			if isParagraph(n.DataAtom) {
				w.buf.WriteByte('\n')
			}
			return
		}
	}

	w.children(n)
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Table, atom.Tr, atom.Blockquote, atom.Pre,
		atom.Center, atom.Address, atom.Main, atom.Nav:
		return true
	}
	return false
}

func isParagraph(a atom.Atom) bool {
	switch a {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Table:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
