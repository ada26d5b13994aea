package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextByLines_UnderLimit(t *testing.T) {
	chunks := ChunkTextByLines("hello", 100, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunkTextByLines_SplitsOnLimit(t *testing.T) {
	line := strings.Repeat("a", 10) + "\n"
	text := strings.Repeat(line, 3)

	chunks := ChunkTextByLines(text, len(line)*2-1, 0)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, line, c)
	}
}

func TestChunkTextByLines_Overlap(t *testing.T) {
	lines := []string{"aaaaaaaaaa\n", "bbbbbbbbbb\n", "cccccccccc\n"}
	text := strings.Join(lines, "")

	chunks := ChunkTextByLines(text, len(lines[0])*2-1, 1)
	require.Len(t, chunks, 3)
	assert.Equal(t, lines[0], chunks[0])
	assert.Equal(t, lines[0]+lines[1], chunks[1])
	assert.Equal(t, lines[1]+lines[2], chunks[2])
}

func TestChunkTextByLines_SingleLineLongerThanLimit(t *testing.T) {
	longLine := strings.Repeat("x", 500) + "\n"
	chunks := ChunkTextByLines(longLine+"short\n", 50, 0)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, longLine, chunks[0])
}

func TestChunkTextByLines_Completeness(t *testing.T) {
	lines := []string{"one\n", "two\n", "three\n", "four\n", "five\n"}
	text := strings.Join(lines, "")

	chunks := ChunkTextByLines(text, 8, 0)
	joined := strings.Join(chunks, "")
	for _, l := range lines {
		assert.Contains(t, joined, l)
	}
}
