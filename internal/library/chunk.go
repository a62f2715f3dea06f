package library

import "strings"

// Chunking defaults, in approximate tokens. A token is estimated at four
// characters of text, which is close enough for sizing index entries.
const (
	defaultChunkTokens   = 512
	defaultOverlapTokens = 64
	charsPerToken        = 4
)

// chunkText splits text into overlapping chunks of roughly chunkTokens
// tokens each, breaking on word boundaries. Consecutive chunks share
// overlapTokens of trailing context so a match near a boundary is findable
// from either side.
func chunkText(text string, chunkTokens, overlapTokens int) []string {
	if chunkTokens <= 0 {
		chunkTokens = defaultChunkTokens
	}
	if overlapTokens < 0 || overlapTokens >= chunkTokens {
		overlapTokens = defaultOverlapTokens
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunkChars := chunkTokens * charsPerToken
	overlapChars := overlapTokens * charsPerToken

	var chunks []string
	start := 0
	for start < len(words) {
		var size int
		end := start
		for end < len(words) && size+len(words[end])+1 <= chunkChars {
			size += len(words[end]) + 1
			end++
		}
		if end == start {
			// Single word longer than a chunk; emit it whole.
			end = start + 1
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}

		// Step back far enough to carry the overlap into the next chunk.
		back := end
		var backSize int
		for back > start && backSize < overlapChars {
			back--
			backSize += len(words[back]) + 1
		}
		if back == start {
			back = start + 1
		}
		start = back
	}
	return chunks
}
