package jobs

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// CollapseSpace trims s and replaces every whitespace run with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText strips HTML markup from a provider fragment. Plain text passes
// through unchanged apart from whitespace collapsing.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return CollapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CollapseSpace(fragment)
	}

	// Block elements would otherwise glue neighbouring words together.
	doc.Find("br, p, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return CollapseSpace(doc.Text())
}

// NormalizeKey lowercases s, turns punctuation into spaces and collapses whitespace.
func NormalizeKey(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)
	return CollapseSpace(s)
}

// Fingerprint derives the key used to detect duplicate listings. A provider
// id wins when present; otherwise title, company and location are combined.
func Fingerprint(l *Listing) string {
	if id := strings.TrimSpace(l.ExternalID); id != "" {
		return "id:" + string(l.Source) + ":" + id
	}

	return "key:" + NormalizeKey(l.Title) + "|" + NormalizeKey(l.Company) + "|" + NormalizeKey(l.Location)
}
