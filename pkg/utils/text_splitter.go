package utils

import "strings"

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// SplitText splits text into chunks of at most roughly chunkSize
// characters, breaking on sentence boundaries so no sentence is cut in
// half. The tail of each chunk (up to overlap characters, whole
// sentences only) is repeated at the start of the next chunk to keep
// context across the boundary.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Carry trailing sentences into the next chunk as overlap.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if carryLen+len(current[i]) > overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carryLen += len(current[i]) + 1
		}
		current = carry
		currentLen = carryLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence) > chunkSize {
			flush()
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// splitSentences breaks text on sentence-ending punctuation. A very
// long run without punctuation still gets emitted as one piece, the
// caller's chunkSize is a soft limit.
func splitSentences(text string) []string {
	normalized := text
	for _, ender := range sentenceEnders {
		normalized = strings.ReplaceAll(normalized, ender, string(ender[0])+"\x00")
	}

	parts := strings.Split(normalized, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
