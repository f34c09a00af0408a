package extractor

import (
	"strings"
	"sync"
	"testing"
)

// TestIDGenerator tests uniqueness under concurrency.
func TestIDGenerator(t *testing.T) {
	t.Parallel()

	t.Run("concurrent generation yields distinct ids", func(t *testing.T) {
		t.Parallel()

		const workers = 20
		const perWorker = 50

		gen := NewIDGenerator()
		ids := make(chan string, workers*perWorker)

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					ids <- gen.Generate("book")
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id generated: %s", id)
			}
			seen[id] = true
			if !strings.HasPrefix(id, "book-") {
				t.Fatalf("id missing prefix: %s", id)
			}
		}

		if len(seen) != workers*perWorker {
			t.Errorf("expected %d ids, got %d", workers*perWorker, len(seen))
		}
		if gen.Count() != workers*perWorker {
			t.Errorf("expected count %d, got %d", workers*perWorker, gen.Count())
		}
	})

	t.Run("empty prefix yields bare uuid", func(t *testing.T) {
		t.Parallel()

		id := NewIDGenerator().Generate("")
		if strings.HasPrefix(id, "-") {
			t.Errorf("unexpected leading dash: %s", id)
		}
		if len(id) != 36 {
			t.Errorf("expected bare uuid length 36, got %d (%s)", len(id), id)
		}
	})
}
