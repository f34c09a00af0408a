package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/toscrape/harvester/internal/model"
)

// QuotesFromPage fetches a quote listing page and parses its quotes.
// Returns an empty slice, never nil, when the page is blocked,
// unreachable, or unparseable.
func (e *Extractor) QuotesFromPage(ctx context.Context, pageURL string) []model.QuoteItem {
	html, ok := e.fetcher.FetchPage(ctx, pageURL)
	if !ok {
		return []model.QuoteItem{}
	}
	return e.QuotesFromHTML(ctx, pageURL, html)
}

// QuotesFromHTML parses the quote blocks of a listing page in page
// order. Blocks missing their text, author, or author link are skipped;
// the rest of the page is unaffected.
//
// The context covers author-detail fetches triggered by cache misses.
func (e *Extractor) QuotesFromHTML(ctx context.Context, pageURL, html string) []model.QuoteItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("failed to parse quotes page", "url", pageURL, "error", err)
		return []model.QuoteItem{}
	}

	quotes := make([]model.QuoteItem, 0)
	doc.Find("div.quote").Each(func(_ int, block *goquery.Selection) {
		text := strings.TrimSpace(block.Find("span.text").First().Text())
		author := strings.TrimSpace(block.Find("small.author").First().Text())
		authorHref, hasHref := block.Find("span a[href]").First().Attr("href")

		if text == "" || author == "" || !hasHref {
			e.logger.Debug("skipping incomplete quote block", "url", pageURL)
			return
		}

		tags := make([]string, 0)
		block.Find("div.tags a.tag").Each(func(_ int, tag *goquery.Selection) {
			tags = append(tags, strings.TrimSpace(tag.Text()))
		})

		quotes = append(quotes, model.QuoteItem{
			ID:            e.ids.Generate("quote"),
			Type:          model.ItemTypeQuote,
			Text:          strings.Trim(text, "“”"),
			Author:        author,
			Tags:          tags,
			PageURL:       pageURL,
			AuthorDetails: e.authors.Get(ctx, pageURL, authorHref),
		})
	})

	return quotes
}
