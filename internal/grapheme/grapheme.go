// Package grapheme wraps uniseg and go-runewidth for grapheme-cluster
// segmentation and terminal cell widths.
package grapheme

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// Tail returns the last n grapheme clusters of text.
func Tail(text string, n int) string {
	if n <= 0 || text == "" {
		return ""
	}
	clusters := Split(text)
	if len(clusters) <= n {
		return text
	}
	return strings.Join(clusters[len(clusters)-n:], "")
}

// Width returns the terminal cell width of a single cluster. Tabs are
// treated as one cell; callers that expand tabs handle them first.
func Width(cluster string) int {
	if cluster == "\t" {
		return 1
	}
	w := runewidth.StringWidth(cluster)
	if w <= 0 {
		w = uniseg.StringWidth(cluster)
	}
	if w < 0 {
		return 0
	}
	return w
}

// StringWidth returns the terminal cell width of text.
func StringWidth(text string) int {
	w := 0
	for _, c := range Split(text) {
		w += Width(c)
	}
	return w
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
