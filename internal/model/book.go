package model

// BookItem represents one book scraped from a book-catalog detail page.
// It is created by the extractor and never modified afterwards.
type BookItem struct {
	// ID is the globally unique identifier, "book-<uuid>".
	ID string `json:"id"`

	// Type is always ItemTypeBook. Kept as a field so the JSON form
	// carries the union discriminant.
	Type ItemType `json:"type"`

	// Title is the book title from the product page header.
	Title string `json:"title"`

	// Price is the listed price with currency symbols stripped.
	// Always non-negative; 0 when the price element is missing.
	Price float64 `json:"price"`

	// Availability is the stock text as shown on the page,
	// e.g. "In stock (15 available)".
	Availability string `json:"availability"`

	// Rating is the star rating mapped from the textual rank words
	// One..Five to 1..5. 0 means the rating was missing or unrecognized.
	Rating int `json:"rating"`

	// Category is the catalog category the book was discovered under,
	// or the last breadcrumb entry when crawled without category context.
	Category string `json:"category"`

	// ProductURL is the absolute URL of the book detail page.
	ProductURL string `json:"product_url"`
}

// ItemType returns ItemTypeBook.
func (b BookItem) ItemType() ItemType { return ItemTypeBook }

// ItemID returns the book's unique identifier.
func (b BookItem) ItemID() string { return b.ID }
