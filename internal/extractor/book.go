package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/toscrape/harvester/internal/model"
)

// ratingWords maps the textual rank classes on book pages to integers.
var ratingWords = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// nonPrice matches every character that is not part of a decimal price.
var nonPrice = regexp.MustCompile(`[^0-9.]`)

// BookFromPage fetches a book detail page and parses it.
// category may be empty, in which case the breadcrumb trail decides.
// Returns false when the page could not be fetched or parsed.
func (e *Extractor) BookFromPage(ctx context.Context, pageURL, category string) (model.BookItem, bool) {
	html, ok := e.fetcher.FetchPage(ctx, pageURL)
	if !ok {
		return model.BookItem{}, false
	}
	return e.BookFromHTML(pageURL, category, html)
}

// BookFromHTML parses a book detail page that has already been fetched.
//
// Missing elements degrade to zero values (empty title, price 0,
// rating 0) the same way the site's own sparse pages do; only HTML that
// cannot be tokenized at all fails the parse.
func (e *Extractor) BookFromHTML(pageURL, category, html string) (model.BookItem, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("failed to parse book page", "url", pageURL, "error", err)
		return model.BookItem{}, false
	}

	book := model.BookItem{
		ID:           e.ids.Generate("book"),
		Type:         model.ItemTypeBook,
		Title:        strings.TrimSpace(doc.Find("div.product_main h1").First().Text()),
		Price:        parsePrice(doc.Find(".price_color").First().Text()),
		Availability: strings.TrimSpace(doc.Find(".availability").First().Text()),
		Rating:       parseRating(doc.Find("p.star-rating").First()),
		Category:     category,
		ProductURL:   pageURL,
	}

	if book.Category == "" {
		book.Category = categoryFromBreadcrumb(doc)
	}

	return book, true
}

// parsePrice strips currency symbols and parses the remainder as a
// decimal. A missing or mangled price yields 0.
func parsePrice(text string) float64 {
	cleaned := nonPrice.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// parseRating reads the star rating from the element's class list,
// e.g. "star-rating Three". Unrecognized or absent ratings map to 0.
func parseRating(sel *goquery.Selection) int {
	classes, ok := sel.Attr("class")
	if !ok {
		return 0
	}
	for cls := range strings.FieldsSeq(classes) {
		if rating, ok := ratingWords[cls]; ok {
			return rating
		}
	}
	return 0
}

// categoryFromBreadcrumb derives the category from the breadcrumb
// trail: Home > Books > <category>. The last anchor is the category;
// fewer than two anchors means the trail is unusable.
func categoryFromBreadcrumb(doc *goquery.Document) string {
	anchors := doc.Find("ul.breadcrumb li a")
	if anchors.Length() < 2 {
		return "Unknown"
	}
	return strings.TrimSpace(anchors.Last().Text())
}
