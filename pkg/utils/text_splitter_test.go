package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("A short paragraph.", 600, 100)
	assert.Equal(t, []string{"A short paragraph."}, chunks)
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("   ", 600, 100))
}

func TestSplitTextRespectsSentenceBoundaries(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This sentence describes one feature of the project in detail. ")
	}

	chunks := SplitText(b.String(), 200, 50)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, strings.HasSuffix(c, "."), "chunk should end on a sentence boundary: %q", c)
	}
}

func TestSplitTextOverlapCarriesTrailingSentence(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here. Fourth sentence here."
	chunks := SplitText(text, 45, 25)

	assert.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		lastSentence := prev[strings.LastIndex(strings.TrimSuffix(prev, "."), ".")+1:]
		lastSentence = strings.TrimSpace(lastSentence)
		if lastSentence != "" && len(lastSentence) <= 25 {
			assert.True(t, strings.HasPrefix(chunks[i], lastSentence),
				"chunk %d should start with the previous chunk's tail", i)
		}
	}
}

func TestSplitTextNoPunctuationStillSplits(t *testing.T) {
	text := strings.Repeat("word ", 300)
	chunks := SplitText(text, 200, 50)
	// One long run with no sentence enders stays a single piece.
	assert.Equal(t, 1, len(chunks))
}
