package model

// CategoryCount is the number of books in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// RatingCount is the number of books with one star rating.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// TagCount is the number of quotes carrying one tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AuthorCount is the number of quotes by one author.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// SummaryData aggregates the dataset along each grouping dimension.
// Each list is ordered by first occurrence in the item sequence, so the
// counts are independent of input permutation while the presentation
// order remains stable for a given item order.
type SummaryData struct {
	BooksByCategory []CategoryCount `json:"books_by_category"`
	BooksByRating   []RatingCount   `json:"books_by_rating"`
	QuotesByTag     []TagCount      `json:"quotes_by_tag"`
	QuotesByAuthor  []AuthorCount   `json:"quotes_by_author"`
}
