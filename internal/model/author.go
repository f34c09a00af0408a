package model

// AuthorDetails holds the biography scraped from an author detail page.
//
// Every field except ID and URL is optional: when the author page cannot
// be fetched (blocked by robots.txt or a network failure) the cache stores
// a minimal record with only ID and URL set. Optional fields are pointers
// so "absent" and "empty string" stay distinguishable in the JSON output.
type AuthorDetails struct {
	// ID is the globally unique identifier, "author-<uuid>".
	ID string `json:"id"`

	// URL is the absolute author page URL. It is also the cache key,
	// so there is at most one AuthorDetails per distinct URL per run.
	URL string `json:"url"`

	// Name is the author's full name from the page header.
	Name *string `json:"name,omitempty"`

	// BornDate is the birth date text, e.g. "March 14, 1879".
	BornDate *string `json:"born_date,omitempty"`

	// BornLocation is the birth place with the leading "in " prefix stripped.
	BornLocation *string `json:"born_location,omitempty"`

	// Description is the biography paragraph.
	Description *string `json:"description,omitempty"`
}
