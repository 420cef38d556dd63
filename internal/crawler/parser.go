package crawler

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/urlnorm"
)

// invisibleParents are elements whose direct text children are not shown.
var invisibleParents = map[string]struct{}{
	"style":    {},
	"script":   {},
	"noscript": {},
	"head":     {},
	"title":    {},
	"meta":     {},
}

// ignoredSchemes are href prefixes that never lead to a page.
var ignoredSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// Parser extracts visible text and links from HTML.
// It implements pipeline.Extractor and is safe for concurrent use.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Extract decodes raw to UTF-8 and returns its visible text and the hrefs of
// its anchors resolved against pageURL (or the document's <base href>), in
// document order. Unresolvable hrefs are dropped.
//
// The encoding comes from a byte order mark, the charset parameter of
// contentType, a <meta> declaration, or content sniffing, in that order.
func (p *Parser) Extract(pageURL, contentType string, raw []byte) (*model.Document, error) {
	root, err := html.Parse(decode(raw, contentType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}

	doc := goquery.NewDocumentFromNode(root)
	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		if resolved, err := urlnorm.Resolve(pageURL, href); err == nil {
			base = resolved
		}
	}

	return &model.Document{
		Text:  visibleText(root),
		Links: anchorLinks(doc, base),
	}, nil
}

// decode returns a UTF-8 reader over raw. Undeclared content that is
// already valid UTF-8 is read as is: sniffing only sees the first 1024 bytes
// and would fall back to windows-1252 for an ASCII prefix.
func decode(raw []byte, contentType string) io.Reader {
	enc, _, certain := charset.DetermineEncoding(raw, contentType)
	if enc == encoding.Nop || (!certain && utf8.Valid(raw)) {
		return bytes.NewReader(raw)
	}
	return enc.NewDecoder().Reader(bytes.NewReader(raw))
}

// anchorLinks returns the resolved href of every anchor.
func anchorLinks(doc *goquery.Document, base string) []string {
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}
		resolved, err := urlnorm.Resolve(base, href)
		if err != nil {
			return
		}
		links = append(links, resolved)
	})
	return links
}

func skipHref(href string) bool {
	if href == "" || href == "#" {
		return true
	}
	lower := strings.ToLower(href)
	for _, prefix := range ignoredSchemes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// visibleText joins the trimmed visible text nodes of the tree with spaces.
func visibleText(root *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && isVisible(n) {
			if s := strings.TrimSpace(n.Data); s != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return b.String()
}

func isVisible(n *html.Node) bool {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return false
	}
	_, hidden := invisibleParents[parent.Data]
	return !hidden
}
