package aggregate

import (
	"time"

	"github.com/toscrape/harvester/internal/model"
)

// BuildDataset concatenates books and quotes into one dataset, computes
// the summary aggregations, and stamps the metadata.
//
// Items are ordered books first, then quotes, each group in the order
// given. Count lists and filter sets are ordered by first occurrence.
func BuildDataset(books []model.BookItem, quotes []model.QuoteItem) model.Dataset {
	items := make(model.ItemList, 0, len(books)+len(quotes))
	for _, b := range books {
		items = append(items, b)
	}
	for _, q := range quotes {
		items = append(items, q)
	}

	return model.Dataset{
		Meta: model.MetaInfo{
			Dataset:     model.DatasetName,
			GeneratedAt: time.Now().UTC(),
			TotalItems:  len(items),
		},
		Filters: model.Filters{
			Categories: distinctCategories(books),
			Tags:       distinctTags(quotes),
		},
		Items:   items,
		Summary: buildSummary(books, quotes),
	}
}

// buildSummary computes the per-dimension counts.
func buildSummary(books []model.BookItem, quotes []model.QuoteItem) model.SummaryData {
	categories := newCounter()
	tags := newCounter()
	authors := newCounter()

	ratingCounts := make(map[int]int)
	ratingOrder := make([]int, 0)

	for _, b := range books {
		categories.add(b.Category)
		if _, seen := ratingCounts[b.Rating]; !seen {
			ratingOrder = append(ratingOrder, b.Rating)
		}
		ratingCounts[b.Rating]++
	}
	for _, q := range quotes {
		authors.add(q.Author)
		for _, tag := range q.Tags {
			tags.add(tag)
		}
	}

	summary := model.SummaryData{
		BooksByCategory: make([]model.CategoryCount, 0, len(categories.order)),
		BooksByRating:   make([]model.RatingCount, 0, len(ratingOrder)),
		QuotesByTag:     make([]model.TagCount, 0, len(tags.order)),
		QuotesByAuthor:  make([]model.AuthorCount, 0, len(authors.order)),
	}
	for _, category := range categories.order {
		summary.BooksByCategory = append(summary.BooksByCategory, model.CategoryCount{
			Category: category,
			Count:    categories.counts[category],
		})
	}
	for _, rating := range ratingOrder {
		summary.BooksByRating = append(summary.BooksByRating, model.RatingCount{
			Rating: rating,
			Count:  ratingCounts[rating],
		})
	}
	for _, tag := range tags.order {
		summary.QuotesByTag = append(summary.QuotesByTag, model.TagCount{
			Tag:   tag,
			Count: tags.counts[tag],
		})
	}
	for _, author := range authors.order {
		summary.QuotesByAuthor = append(summary.QuotesByAuthor, model.AuthorCount{
			Author: author,
			Count:  authors.counts[author],
		})
	}
	return summary
}

// counter tallies string keys while remembering first-occurrence order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// distinctCategories returns the distinct book categories in
// first-occurrence order.
func distinctCategories(books []model.BookItem) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, b := range books {
		if !seen[b.Category] {
			seen[b.Category] = true
			out = append(out, b.Category)
		}
	}
	return out
}

// distinctTags returns the distinct quote tags in first-occurrence order.
func distinctTags(quotes []model.QuoteItem) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, q := range quotes {
		for _, tag := range q.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}
