package model

// QuoteItem represents one quote scraped from a quote-catalog listing page.
type QuoteItem struct {
	// ID is the globally unique identifier, "quote-<uuid>".
	ID string `json:"id"`

	// Type is always ItemTypeQuote.
	Type ItemType `json:"type"`

	// Text is the quote body with the enclosing curly quotation marks
	// trimmed.
	Text string `json:"text"`

	// Author is the display name shown next to the quote.
	Author string `json:"author"`

	// Tags are the quote's tags in page order. The site does not emit
	// duplicates, and we do not deduplicate.
	Tags []string `json:"tags"`

	// PageURL is the absolute URL of the listing page the quote was found on.
	PageURL string `json:"page_url"`

	// AuthorDetails is the shared biography record for this quote's author.
	// Multiple quotes by the same author point at the same cached value.
	// Nil only when the author link was missing, which also skips the quote.
	AuthorDetails *AuthorDetails `json:"author_details,omitempty"`
}

// ItemType returns ItemTypeQuote.
func (q QuoteItem) ItemType() ItemType { return ItemTypeQuote }

// ItemID returns the quote's unique identifier.
func (q QuoteItem) ItemID() string { return q.ID }
