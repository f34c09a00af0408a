package pagination

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NextBookPageURL returns the absolute URL of the next page in a book
// category listing, or false when the listing has no next page.
//
// The book catalog marks its next page with an element of class "next"
// wrapping an anchor.
func NextBookPageURL(html, currentURL string) (string, bool) {
	return nextFromSelector(html, currentURL, ".next a")
}

// NextQuotePageURL returns the absolute URL of the next quote listing
// page, or false when the chain ends.
//
// The quote catalog uses a pager list: <ul class="pager"><li class="next">.
// An anchor with a missing or empty href also ends the chain.
func NextQuotePageURL(html, currentURL string) (string, bool) {
	return nextFromSelector(html, currentURL, "ul.pager li.next a")
}

// nextFromSelector finds the first anchor matching sel and resolves its
// href against currentURL.
func nextFromSelector(html, currentURL, sel string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	href, ok := doc.Find(sel).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}

	resolved, ok := resolve(currentURL, href)
	if !ok {
		return "", false
	}
	return resolved, true
}

// resolve joins href against base, mirroring urljoin semantics.
func resolve(base, href string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}
