package utils

import "strings"

// SplitText splits a long string into chunks of approximately 'chunkSize' characters.
// It includes an 'overlap' to preserve context at boundaries.
// Chunks prefer to break at a paragraph, line, or sentence boundary near the
// end of the window so that policy tables and clauses stay intact.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	totalLen := len(runes)

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		} else {
			end = adjustBoundary(runes, i, end)
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// adjustBoundary walks backwards from 'end' looking for a natural break
// within the last quarter of the window. Falls back to the hard cut.
func adjustBoundary(runes []rune, start, end int) int {
	minBreak := end - (end-start)/4
	for _, sep := range []string{"\n\n", "\n", ". "} {
		window := string(runes[minBreak:end])
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return minBreak + len([]rune(window[:idx+len(sep)]))
		}
	}
	return end
}
