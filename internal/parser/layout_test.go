package parser

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

// ruledTable builds the line boxes and cell runs of a 2x2 bordered table
// spanning X 100-300, Y 520-560.
func ruledTable() ([]pdf.Rect, []pdf.Text) {
	rects := []pdf.Rect{
		{Min: pdf.Point{X: 100, Y: 560}, Max: pdf.Point{X: 300, Y: 560}},
		{Min: pdf.Point{X: 100, Y: 540}, Max: pdf.Point{X: 300, Y: 540}},
		{Min: pdf.Point{X: 100, Y: 520}, Max: pdf.Point{X: 300, Y: 520}},
		{Min: pdf.Point{X: 100, Y: 520}, Max: pdf.Point{X: 100, Y: 560}},
		{Min: pdf.Point{X: 200, Y: 520}, Max: pdf.Point{X: 200, Y: 560}},
		{Min: pdf.Point{X: 300, Y: 520}, Max: pdf.Point{X: 300, Y: 560}},
	}
	texts := []pdf.Text{
		{X: 105, Y: 548, W: 30, FontSize: 10, S: "Name"},
		{X: 205, Y: 548, W: 20, FontSize: 10, S: "Age"},
		{X: 105, Y: 528, W: 22, FontSize: 10, S: "Bob"},
		{X: 205, Y: 528, W: 14, FontSize: 10, S: "42"},
	}
	return rects, texts
}

func TestDetectTablesReadsGrid(t *testing.T) {
	rects, texts := ruledTable()

	regions := detectTables(texts, rects)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}

	grid := regions[0].grid
	if len(grid) != 2 {
		t.Fatalf("got %d rows, want 2", len(grid))
	}
	if grid[0][0] != "Name" || grid[0][1] != "Age" {
		t.Errorf("header row = %v", grid[0])
	}
	if grid[1][0] != "Bob" || grid[1][1] != "42" {
		t.Errorf("data row = %v", grid[1])
	}
}

func TestDetectTablesIgnoresSparseRuling(t *testing.T) {
	// a single underline is not a table
	rects := []pdf.Rect{
		{Min: pdf.Point{X: 100, Y: 560}, Max: pdf.Point{X: 300, Y: 560}},
	}
	texts := []pdf.Text{
		{X: 105, Y: 565, W: 40, FontSize: 10, S: "Heading"},
	}

	if regions := detectTables(texts, rects); len(regions) != 0 {
		t.Fatalf("got %d regions, want 0", len(regions))
	}
}

func TestBodyTextExcludesTableRegions(t *testing.T) {
	rects, texts := ruledTable()
	texts = append(texts,
		pdf.Text{X: 50, Y: 700, W: 26, FontSize: 10, S: "Hello"},
		pdf.Text{X: 80, Y: 700, W: 27, FontSize: 10, S: "world"},
	)

	regions := detectTables(texts, rects)
	body := bodyText(texts, regions)

	if body != "Hello world" {
		t.Errorf("body = %q, want %q", body, "Hello world")
	}
	for _, cell := range []string{"Name", "Age", "Bob", "42"} {
		if strings.Contains(body, cell) {
			t.Errorf("body %q contains table cell %q", body, cell)
		}
	}
}

func TestJoinRunsWordBoundaries(t *testing.T) {
	runs := []pdf.Text{
		{X: 10, W: 5, S: "He"},
		{X: 15, W: 5, S: "llo"}, // contiguous, no space
		{X: 30, W: 5, S: "you"}, // gapped, space
	}
	if got := joinRuns(runs); got != "Hello you" {
		t.Errorf("joinRuns = %q, want %q", got, "Hello you")
	}
}

func TestClusterValues(t *testing.T) {
	got := clusterValues([]float64{100, 101, 102, 200, 201, 300}, 4)
	if len(got) != 3 {
		t.Fatalf("got %d clusters %v, want 3", len(got), got)
	}
	if got[0] != 100 || got[1] != 200 || got[2] != 300 {
		t.Errorf("cluster reps = %v", got)
	}
}

func TestGroupLinesOrdersTopToBottom(t *testing.T) {
	texts := []pdf.Text{
		{X: 10, Y: 100, S: "bottom"},
		{X: 10, Y: 700, S: "top"},
		{X: 60, Y: 701, S: "right"}, // same line as "top" within tolerance
	}

	lines := groupLines(texts)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0][0].S != "top" || lines[0][1].S != "right" {
		t.Errorf("first line = %v", lines[0])
	}
	if lines[1][0].S != "bottom" {
		t.Errorf("second line = %v", lines[1])
	}
}
