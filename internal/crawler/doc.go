// Package crawler enumerates the pages and links of the two catalog
// sites.
//
// Book mode discovers the category list from the catalog root, then
// walks each category's pagination chain concurrently inside a bounded
// worker pool, collecting book-detail links. Quote mode walks the
// single quote pagination chain sequentially, keeping each fetched
// page's HTML so the parse stage never refetches a URL the visited set
// has already claimed.
//
// Failure isolation is per crawl unit: a fetch failure ends that
// category's (or the quote chain's) traversal early with partial
// results and never aborts sibling units.
package crawler
