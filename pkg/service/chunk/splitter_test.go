package chunk_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/service/chunk"
)

func TestSplit(t *testing.T) {
	t.Run("empty input yields no fragments", func(t *testing.T) {
		splitter := chunk.New()
		gt.Value(t, len(splitter.Split(""))).Equal(0)
		gt.Value(t, len(splitter.Split("   \n\t "))).Equal(0)
	})

	t.Run("input shorter than target yields single fragment", func(t *testing.T) {
		splitter := chunk.New()
		fragments := splitter.Split("Just a short note.")
		gt.Value(t, len(fragments)).Equal(1)
		gt.Value(t, fragments[0].Position).Equal(0)
		gt.Value(t, fragments[0].Text).Equal("Just a short note.")
	})

	t.Run("prefers sentence boundaries over mid-word cuts", func(t *testing.T) {
		splitter := chunk.New(chunk.WithTargetSize(2), chunk.WithOverlap(0))
		fragments := splitter.Split("A. B. C.")

		gt.Value(t, len(fragments)).Equal(3)
		gt.Value(t, fragments[0].Text).Equal("A.")
		gt.Value(t, fragments[1].Text).Equal("B.")
		gt.Value(t, fragments[2].Text).Equal("C.")
	})

	t.Run("positions are zero-based and contiguous", func(t *testing.T) {
		text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
		splitter := chunk.New()
		fragments := splitter.Split(text)

		gt.Number(t, len(fragments)).GreaterOrEqual(2)
		for i, frag := range fragments {
			gt.Value(t, frag.Position).Equal(i)
			// Fragments never carry surrounding whitespace
			gt.Value(t, frag.Text).Equal(strings.TrimSpace(frag.Text))
			gt.Value(t, frag.Text).NotEqual("")
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		text := strings.Repeat("One sentence here. Another one there! A question? ", 40)
		splitter := chunk.New()

		first := splitter.Split(text)
		second := splitter.Split(text)

		gt.Value(t, len(first)).Equal(len(second))
		for i := range first {
			gt.Value(t, second[i].Position).Equal(first[i].Position)
			gt.Value(t, second[i].Text).Equal(first[i].Text)
		}
	})

	t.Run("hard cut when no boundary exists", func(t *testing.T) {
		text := strings.Repeat("abcdefghij", 120) // 1200 chars, no sentence ends
		splitter := chunk.New(chunk.WithTargetSize(500), chunk.WithOverlap(50))
		fragments := splitter.Split(text)

		gt.Number(t, len(fragments)).GreaterOrEqual(3)
		gt.Value(t, len(fragments[0].Text)).Equal(500)

		// The next fragment starts 50 chars before the previous cut
		tail := fragments[0].Text[len(fragments[0].Text)-50:]
		gt.Value(t, fragments[1].Text[:50]).Equal(tail)
	})

	t.Run("overlap never stalls progress", func(t *testing.T) {
		splitter := chunk.New(chunk.WithTargetSize(10), chunk.WithOverlap(9))
		fragments := splitter.Split(strings.Repeat("z", 100))
		gt.Number(t, len(fragments)).GreaterOrEqual(2)

		for i, frag := range fragments {
			gt.Value(t, frag.Position).Equal(i)
		}
	})
}
