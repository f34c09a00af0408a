package extractor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const quotesPageURL = "https://quotes.toscrape.com/"

// quotesPageFixture builds a listing page with ten quote blocks. The
// first block reproduces the real first quote of the demo site; the
// rest are synthetic but structurally identical.
func quotesPageFixture() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><div class="col-md-8">`)

	b.WriteString(`
	<div class="quote">
		<span class="text">“The world as we have created it is a process of our thinking. It cannot be changed without changing our thinking.”</span>
		<span>by <small class="author">Albert Einstein</small>
		<a href="/author/Albert-Einstein">(about)</a>
		</span>
		<div class="tags">
			Tags:
			<a class="tag" href="/tag/change/page/1/">change</a>
			<a class="tag" href="/tag/deep-thoughts/page/1/">deep-thoughts</a>
			<a class="tag" href="/tag/thinking/page/1/">thinking</a>
			<a class="tag" href="/tag/world/page/1/">world</a>
		</div>
	</div>`)

	for i := 2; i <= 10; i++ {
		fmt.Fprintf(&b, `
	<div class="quote">
		<span class="text">“Quote number %d.”</span>
		<span>by <small class="author">Author %d</small>
		<a href="/author/Author-%d">(about)</a>
		</span>
		<div class="tags">
			Tags:
			<a class="tag" href="/tag/tag-%d/page/1/">tag-%d</a>
		</div>
	</div>`, i, i, i, i, i)
	}

	b.WriteString(`</div></body></html>`)
	return b.String()
}

// TestQuotesFromHTML tests quote listing extraction.
func TestQuotesFromHTML(t *testing.T) {
	t.Parallel()

	t.Run("extracts all blocks in page order", func(t *testing.T) {
		t.Parallel()

		ext, _ := newTestExtractor(nil)
		quotes := ext.QuotesFromHTML(context.Background(), quotesPageURL, quotesPageFixture())

		if len(quotes) != 10 {
			t.Fatalf("expected 10 quotes, got %d", len(quotes))
		}

		first := quotes[0]
		if first.Text != "The world as we have created it is a process of our thinking. It cannot be changed without changing our thinking." {
			t.Errorf("unexpected text: %q", first.Text)
		}
		if first.Author != "Albert Einstein" {
			t.Errorf("unexpected author: %q", first.Author)
		}
		wantTags := []string{"change", "deep-thoughts", "thinking", "world"}
		if !reflect.DeepEqual(first.Tags, wantTags) {
			t.Errorf("expected tags %v, got %v", wantTags, first.Tags)
		}
		if first.PageURL != quotesPageURL {
			t.Errorf("unexpected page URL: %q", first.PageURL)
		}
		if first.ID == "" || first.Type != "quote" {
			t.Errorf("bad identity fields: id=%q type=%q", first.ID, first.Type)
		}

		// Page order is preserved
		for i, q := range quotes[1:] {
			want := fmt.Sprintf("Quote number %d.", i+2)
			if q.Text != want {
				t.Errorf("quote %d out of order: %q", i+1, q.Text)
			}
		}

		// Every quote carries author details, minimal or not
		for i, q := range quotes {
			if q.AuthorDetails == nil {
				t.Errorf("quote %d missing author details", i)
			}
		}
	})

	t.Run("skips blocks missing required pieces", func(t *testing.T) {
		t.Parallel()

		html := `
		<div class="quote">
			<span class="text">“No author here.”</span>
		</div>
		<div class="quote">
			<span class="text">“Complete.”</span>
			<span>by <small class="author">Someone</small>
			<a href="/author/Someone">(about)</a></span>
		</div>
		<div class="quote">
			<span>by <small class="author">No Text</small>
			<a href="/author/No-Text">(about)</a></span>
		</div>`

		ext, _ := newTestExtractor(nil)
		quotes := ext.QuotesFromHTML(context.Background(), quotesPageURL, html)

		if len(quotes) != 1 {
			t.Fatalf("expected 1 quote, got %d", len(quotes))
		}
		if quotes[0].Text != "Complete." {
			t.Errorf("unexpected surviving quote: %q", quotes[0].Text)
		}
		if quotes[0].Tags == nil {
			t.Error("expected empty tag slice, got nil")
		}
	})

	t.Run("quotes by one author share cached details", func(t *testing.T) {
		t.Parallel()

		html := `
		<div class="quote">
			<span class="text">“One.”</span>
			<span>by <small class="author">Albert Einstein</small>
			<a href="/author/Albert-Einstein">(about)</a></span>
		</div>
		<div class="quote">
			<span class="text">“Two.”</span>
			<span>by <small class="author">Albert Einstein</small>
			<a href="/author/Albert-Einstein">(about)</a></span>
		</div>`

		ext, fetch := newTestExtractor(map[string]string{
			"https://quotes.toscrape.com/author/Albert-Einstein": `<h3 class="author-title">Albert Einstein</h3>`,
		})
		quotes := ext.QuotesFromHTML(context.Background(), quotesPageURL, html)

		if len(quotes) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(quotes))
		}
		if quotes[0].AuthorDetails != quotes[1].AuthorDetails {
			t.Error("expected both quotes to share one AuthorDetails value")
		}
		if got := fetch.fetchCount("https://quotes.toscrape.com/author/Albert-Einstein"); got != 1 {
			t.Errorf("expected 1 author fetch, got %d", got)
		}
	})
}

// TestQuotesFromPage tests the fetch-then-parse path.
func TestQuotesFromPage(t *testing.T) {
	t.Parallel()

	t.Run("failed fetch yields empty slice", func(t *testing.T) {
		t.Parallel()

		ext, _ := newTestExtractor(nil)
		quotes := ext.QuotesFromPage(context.Background(), quotesPageURL)
		if quotes == nil {
			t.Fatal("expected empty slice, got nil")
		}
		if len(quotes) != 0 {
			t.Errorf("expected no quotes, got %d", len(quotes))
		}
	})

	t.Run("parses a fetched page", func(t *testing.T) {
		t.Parallel()

		ext, _ := newTestExtractor(map[string]string{quotesPageURL: quotesPageFixture()})
		quotes := ext.QuotesFromPage(context.Background(), quotesPageURL)
		if len(quotes) != 10 {
			t.Errorf("expected 10 quotes, got %d", len(quotes))
		}
	})
}
