// Package chunker splits corpus text into bounded, paragraph-aligned chunks.
package chunker

import (
	"fmt"
	"strings"
)

// MaxChunkChars is the upper bound on chunk length, counted in characters.
const MaxChunkChars = 500

const paragraphSep = "\n\n"

// Chunk is one retrieval unit cut from a corpus source file.
type Chunk struct {
	ID      string
	Ordinal int
	Text    string
	Source  string
}

// Split cuts text on blank-line paragraph boundaries. Whitespace-only
// paragraphs are dropped, paragraphs over MaxChunkChars are re-split into
// consecutive fixed-width slices, and all others are kept verbatim.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	for _, para := range strings.Split(text, paragraphSep) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		runes := []rune(para)
		if len(runes) <= MaxChunkChars {
			chunks = append(chunks, para)
			continue
		}
		for start := 0; start < len(runes); start += MaxChunkChars {
			end := start + MaxChunkChars
			if end > len(runes) {
				end = len(runes)
			}
			slice := string(runes[start:end])
			// A long paragraph padded with whitespace can leave a blank tail.
			if strings.TrimSpace(slice) == "" {
				continue
			}
			chunks = append(chunks, slice)
		}
	}
	return chunks
}

// Build splits text and assigns each chunk a stable ordinal ID of the form
// {corpus}_{ordinal}.
func Build(corpus, source, text string) []Chunk {
	parts := Split(text)
	if len(parts) == 0 {
		return nil
	}
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			ID:      ChunkID(corpus, i),
			Ordinal: i,
			Text:    p,
			Source:  source,
		}
	}
	return chunks
}

// ChunkID returns the index entry ID for the ordinal-th chunk of a corpus.
func ChunkID(corpus string, ordinal int) string {
	return fmt.Sprintf("%s_%d", corpus, ordinal)
}
