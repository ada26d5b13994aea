package docgen

import "strings"

// ChunkTextByLines splits text into line-bounded, optionally overlapping
// chunks no wider than maxChars. A single line longer than maxChars is still
// emitted intact, alone, in its own chunk.
//
// Mirrors the accumulate-then-flush algorithm of the original
// forest_portal_helper.core.chunking.chunk_text_by_lines: lines are appended
// to an accumulator; before a line would push the accumulator over maxChars,
// the accumulator is flushed as a chunk and reseeded with the last
// overlapLines lines of what was just flushed.
func ChunkTextByLines(text string, maxChars int, overlapLines int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	lines := splitKeepEnds(text)

	var chunks []string
	var cur []string
	curLen := 0

	for _, line := range lines {
		if len(cur) > 0 && curLen+len(line) > maxChars {
			chunks = append(chunks, strings.Join(cur, ""))

			if overlapLines > 0 {
				tail := cur
				if len(cur) > overlapLines {
					tail = cur[len(cur)-overlapLines:]
				}
				cur = append([]string(nil), tail...)
				curLen = 0
				for _, l := range cur {
					curLen += len(l)
				}
			} else {
				cur = nil
				curLen = 0
			}
		}

		cur = append(cur, line)
		curLen += len(line)
	}

	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}

	return chunks
}

// splitKeepEnds splits text into lines, keeping each line's terminator
// (matching Python's str.splitlines(keepends=True)). The final fragment,
// even without a trailing newline, is emitted as its own element.
func splitKeepEnds(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
