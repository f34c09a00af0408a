package model

import "time"

// DatasetName is the fixed dataset identifier stamped into MetaInfo.
const DatasetName = "books_and_quotes"

// MetaInfo describes a generated dataset.
type MetaInfo struct {
	// Dataset is the dataset identifier, always DatasetName.
	Dataset string `json:"dataset"`

	// GeneratedAt is the RFC 3339 UTC timestamp of dataset creation.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalItems equals len(Dataset.Items). Stored redundantly so
	// consumers of the serialized form can validate truncation.
	TotalItems int `json:"total_items"`
}

// Filters lists the distinct dimension values present in the dataset,
// in first-occurrence order.
type Filters struct {
	// Categories are the distinct book categories.
	Categories []string `json:"categories"`

	// Tags are the distinct quote tags.
	Tags []string `json:"tags"`
}

// Dataset is the merged output of one harvest run.
//
// Items holds books before quotes, each group in discovery order, so
// repeated runs over identical inputs serialize identically apart from
// ids and the generation timestamp.
type Dataset struct {
	Meta    MetaInfo    `json:"meta"`
	Filters Filters     `json:"filters"`
	Items   ItemList    `json:"items"`
	Summary SummaryData `json:"summary"`
}
