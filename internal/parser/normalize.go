package parser

import (
	"fmt"
	"strings"

	"docqa/internal/models"
)

// Normalize converts a chunk's content to a single embeddable string. Text
// passes through unchanged; table grids render as newline-separated rows of
// tab-joined cells; anything else falls back to generic stringification.
// Never fails.
func Normalize(c models.Chunk) string {
	switch c.Kind {
	case models.ChunkText:
		return c.Text
	case models.ChunkTable:
		return renderGrid(c.Table)
	default:
		if c.Text != "" {
			return c.Text
		}
		return fmt.Sprintf("%v", c.Table)
	}
}

// BuildDocuments projects chunks into index-ready records, one per chunk.
func BuildDocuments(chunks []models.Chunk) []models.Document {
	docs := make([]models.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = models.Document{
			Content:  Normalize(c),
			Metadata: models.Metadata{File: c.File, Page: c.Page},
		}
	}
	return docs
}

func renderGrid(grid [][]string) string {
	rows := make([]string, len(grid))
	for i, row := range grid {
		rows[i] = strings.Join(row, "\t")
	}
	return strings.Join(rows, "\n")
}

// splitWindows cuts text into contiguous, non-overlapping windows of at
// most size runes. Each window is trimmed and empty windows are dropped.
func splitWindows(text string, size int) []string {
	if size <= 0 {
		size = 1200
	}
	runes := []rune(text)

	var windows []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		win := strings.TrimSpace(string(runes[start:end]))
		if win != "" {
			windows = append(windows, win)
		}
	}
	return windows
}

// trimBlankLines drops empty lines and trims the rest.
func trimBlankLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
