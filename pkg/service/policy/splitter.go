package policy

import "strings"

// Splitter chunks long documents into overlapping pieces sized for
// embedding. Splits prefer paragraph breaks, then line breaks, then word
// boundaries, and only cut mid-word as a last resort.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

var separators = []string{"\n\n", "\n", " "}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split divides text into chunks of at most ChunkSize runes, each chunk
// sharing Overlap runes with its predecessor. Empty chunks are dropped.
func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.ChunkSize {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.cutPoint(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}
		next := end - s.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// cutPoint finds the best break position in runes[start:limit], scanning
// backwards for the strongest separator in the window's second half
func (s *Splitter) cutPoint(runes []rune, start, limit int) int {
	window := string(runes[start:limit])
	floor := len(window) / 2

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= floor {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}

	return limit
}
