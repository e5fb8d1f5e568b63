package editor

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Cell is one visible position of a document: a rune with its formatting,
// or a line break.
type Cell struct {
	Rune rune
	Bold bool
	Href string
}

// Break is the cell used for a line break.
var Break = Cell{Rune: '\n'}

// IsBreak reports whether c is a line break.
func (c Cell) IsBreak() bool { return c.Rune == '\n' }

// Doc is a flat formatted document.
type Doc []Cell

// allowedSchemes are kept even without "//" after the colon.
var allowedSchemes = []string{"http", "https", "mailto", "tel", "sms", "ftp", "ftps"}

// schemeName matches any scheme bluemonday lets through; safeHref then
// applies the same rule as NormalizeHref.
var schemeName = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

var sanitizer = newSanitizer()

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "br", "div", "p")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes(allowedSchemes...)
	p.AllowURLSchemesMatching(schemeName)
	return p
}

// Parse loads stored markup into a document. Anything outside the supported
// subset (bold, links, line breaks) is dropped but its text is kept; script
// and style content is discarded. Literal newlines count as line breaks.
func Parse(markup string) Doc {
	if markup == "" {
		return nil
	}
	clean := sanitizer.Sanitize(markup)

	var (
		doc   Doc
		bold  int
		links []string
	)
	href := func() string {
		if len(links) == 0 {
			return ""
		}
		return links[len(links)-1]
	}
	block := func() {
		if len(doc) > 0 && !doc[len(doc)-1].IsBreak() {
			doc = append(doc, Break)
		}
	}

	z := html.NewTokenizer(strings.NewReader(clean))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return doc
		}
		tok := z.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.Data {
			case "b", "strong":
				if tt == html.StartTagToken {
					bold++
				}
			case "a":
				if tt == html.StartTagToken {
					links = append(links, safeHref(attr(tok, "href")))
				}
			case "br":
				doc = append(doc, Break)
			case "div", "p":
				block()
			}
		case html.EndTagToken:
			switch tok.Data {
			case "b", "strong":
				if bold > 0 {
					bold--
				}
			case "a":
				if len(links) > 0 {
					links = links[:len(links)-1]
				}
			}
		case html.TextToken:
			for _, r := range tok.Data {
				switch r {
				case '\r':
				case '\n':
					doc = append(doc, Break)
				default:
					doc = append(doc, Cell{Rune: r, Bold: bold > 0, Href: href()})
				}
			}
		}
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Serialize renders the canonical markup for a document. Equal documents
// always produce identical strings.
func Serialize(doc Doc) string {
	var b strings.Builder
	for i := 0; i < len(doc); {
		c := doc[i]
		if c.IsBreak() {
			b.WriteString("<br>")
			i++
			continue
		}
		j := i
		for j < len(doc) && !doc[j].IsBreak() && doc[j].Href == c.Href {
			j++
		}
		if c.Href != "" {
			b.WriteString(`<a href="` + escapeAttr(c.Href) + `" target="_blank" rel="noopener noreferrer">`)
			writeBold(&b, doc[i:j])
			b.WriteString("</a>")
		} else {
			writeBold(&b, doc[i:j])
		}
		i = j
	}
	return b.String()
}

func writeBold(b *strings.Builder, run Doc) {
	for i := 0; i < len(run); {
		j := i
		for j < len(run) && run[j].Bold == run[i].Bold {
			j++
		}
		if run[i].Bold {
			b.WriteString("<b>")
		}
		for _, c := range run[i:j] {
			writeEscaped(b, c.Rune)
		}
		if run[i].Bold {
			b.WriteString("</b>")
		}
		i = j
	}
}

func writeEscaped(b *strings.Builder, r rune) {
	switch r {
	case '&':
		b.WriteString("&amp;")
	case '<':
		b.WriteString("&lt;")
	case '>':
		b.WriteString("&gt;")
	case nbsp:
		b.WriteString("&nbsp;")
	default:
		b.WriteRune(r)
	}
}

func escapeAttr(s string) string {
	return strings.NewReplacer("&", "&amp;", `"`, "&quot;").Replace(s)
}

// Text returns the document's visible text with breaks as newlines.
func (d Doc) Text() string {
	var b strings.Builder
	for _, c := range d {
		if c.Rune == nbsp {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// PlainText strips all formatting from stored markup.
func PlainText(markup string) string {
	return Parse(DisplayForm(markup)).Text()
}

// ToMarkdown converts stored markup to markdown: bold becomes **text**,
// links become [text](href) and breaks become newlines.
func ToMarkdown(markup string) string {
	doc := Parse(DisplayForm(markup))
	var b strings.Builder
	for i := 0; i < len(doc); {
		c := doc[i]
		if c.IsBreak() {
			b.WriteString("\n")
			i++
			continue
		}
		j := i
		for j < len(doc) && !doc[j].IsBreak() && doc[j].Href == c.Href {
			j++
		}
		if c.Href != "" {
			b.WriteString("[")
			writeMarkdownBold(&b, doc[i:j])
			b.WriteString("](" + c.Href + ")")
		} else {
			writeMarkdownBold(&b, doc[i:j])
		}
		i = j
	}
	return b.String()
}

func writeMarkdownBold(b *strings.Builder, run Doc) {
	for i := 0; i < len(run); {
		j := i
		for j < len(run) && run[j].Bold == run[i].Bold {
			j++
		}
		text := run[i:j].Text()
		if run[i].Bold && strings.TrimSpace(text) != "" {
			b.WriteString("**" + text + "**")
		} else {
			b.WriteString(text)
		}
		i = j
	}
}

// DisplayForm converts a legacy plain-text value (one with newlines but no
// markup) into markup by turning newlines into breaks.
func DisplayForm(value string) string {
	if value == "" || strings.Contains(value, "<") {
		return value
	}
	return strings.ReplaceAll(value, "\n", "<br>")
}
