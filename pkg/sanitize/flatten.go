package sanitize

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// FlattenHTML reduces rendered markup to speakable plain text: scripts,
// styles, and other non-content elements are dropped, block boundaries
// become single spaces, and whitespace runs are collapsed.
func FlattenHTML(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var builder strings.Builder
	flattenNode(doc, &builder)

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(builder.String(), " ")), nil
}

// flattenNode walks the node tree appending text content, separating
// block-level elements so adjacent paragraphs don't run together.
func flattenNode(n *html.Node, builder *strings.Builder) {
	if n.Type == html.CommentNode {
		return
	}

	if n.Type == html.ElementNode && isSkippedElement(strings.ToLower(n.Data)) {
		return
	}

	if n.Type == html.TextNode {
		builder.WriteString(n.Data)
		return
	}

	if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
		builder.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenNode(c, builder)
	}

	if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
		builder.WriteString(" ")
	}
}

// isSkippedElement returns true for elements that should be completely removed
func isSkippedElement(tagName string) bool {
	skipped := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"iframe":   true,
		"embed":    true,
		"object":   true,
		"svg":      true,
	}
	return skipped[tagName]
}

// isBlockElement returns true for block-level elements (used as text boundaries)
func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div":        true,
		"p":          true,
		"section":    true,
		"article":    true,
		"header":     true,
		"footer":     true,
		"nav":        true,
		"main":       true,
		"aside":      true,
		"h1":         true,
		"h2":         true,
		"h3":         true,
		"h4":         true,
		"h5":         true,
		"h6":         true,
		"ul":         true,
		"ol":         true,
		"li":         true,
		"table":      true,
		"tr":         true,
		"td":         true,
		"th":         true,
		"blockquote": true,
		"pre":        true,
		"br":         true,
	}
	return blocks[tagName]
}
