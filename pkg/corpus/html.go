package corpus

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// Only known element names count as markup, and attributes need an '=',
	// so "x<y and z>w" and "a<b and c>d" stay text.
	reTag = regexp.MustCompile(`(?i)</?(?:a|abbr|article|b|big|blockquote|body|br|caption|center|code|dd|del|div|dl|dt|em|font|footer|h[1-6]|head|header|hr|html|i|img|ins|li|mark|noscript|ol|p|pre|rp|rt|ruby|s|script|section|small|span|strike|strong|style|sub|sup|table|tbody|td|tfoot|th|thead|title|tr|u|ul)(?:\s*/?|\s+[^<>]*=[^<>]*)>`)

	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// LooksLikeHTML reports whether s contains markup tags.
func LooksLikeHTML(s string) bool {
	return reTag.MatchString(s)
}

// StripHTML returns the text content of an HTML fragment. Block elements and
// <br> become line breaks; script and style bodies are dropped.
func StripHTML(fragment string) string {
	src := escapeStrayBrackets(string(SanitizeRuby([]byte(fragment))))
	nodes, err := html.ParseFragment(strings.NewReader(src), nil)
	if err != nil {
		return reTag.ReplaceAllString(fragment, " ")
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// escapeStrayBrackets escapes every '<' that does not open a known tag, so
// comparisons in mixed fields survive parsing.
func escapeStrayBrackets(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range reTag.FindAllStringIndex(s, -1) {
		b.WriteString(strings.ReplaceAll(s[last:loc[0]], "<", "&lt;"))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// so annotated Japanese text is not duplicated (e.g. "漢字" becoming "漢字かんじ").
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
