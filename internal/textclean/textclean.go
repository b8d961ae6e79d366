// Package textclean turns raw feed text (often HTML fragments) into plain text.
package textclean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Clean strips markup, keeps visible text and collapses whitespace runs into
// single spaces. It never fails: when the fragment can't be parsed the input
// itself is used as best-effort text.
//
// Text that still decodes to markup (for example "&lt;b&gt;") is extracted
// again until a pass stops shrinking it, so Clean(Clean(x)) == Clean(x).
// Only the first pass drops script and style bodies; in later passes they
// came from escaped text and are kept as words.
func Clean(raw string) string {
	text := collapse(raw)
	for pass := 0; text != ""; pass++ {
		next := collapse(extract(text, pass == 0))
		if len(next) >= len(text) {
			break
		}
		text = next
	}
	return text
}

func extract(fragment string, dropHidden bool) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	if dropHidden {
		// script/style bodies are not visible text
		doc.Find("script, style, noscript").Remove()
	}
	return doc.Text()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
