package parser

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Geometry tolerances, in points, sized for common 9-12pt body text.
const (
	lineTol  = 3.0 // runs within this Y distance sit on one line
	colTol   = 4.0 // X clustering distance for column stops
	mergeTol = 3.0 // gap allowed when merging ruled-line boxes
	wordGap  = 1.0 // minimum X gap treated as a word boundary

	minRegionRects = 4 // a ruled table draws at least this many segments
	minTableRows   = 2
	minTableCols   = 2
)

type box struct {
	minX, minY, maxX, maxY float64
}

func (b box) contains(x, y float64) bool {
	return x >= b.minX-mergeTol && x <= b.maxX+mergeTol &&
		y >= b.minY-mergeTol && y <= b.maxY+mergeTol
}

func (b box) union(o box) box {
	if o.minX < b.minX {
		b.minX = o.minX
	}
	if o.minY < b.minY {
		b.minY = o.minY
	}
	if o.maxX > b.maxX {
		b.maxX = o.maxX
	}
	if o.maxY > b.maxY {
		b.maxY = o.maxY
	}
	return b
}

func (b box) near(o box) bool {
	return b.minX-mergeTol <= o.maxX && o.minX-mergeTol <= b.maxX &&
		b.minY-mergeTol <= o.maxY && o.minY-mergeTol <= b.maxY
}

// tableRegion is one detected table: its bounding box on the page and the
// cell grid read out of the runs inside it.
type tableRegion struct {
	bounds box
	grid   [][]string
}

// detectTables clusters the page's ruled-line rectangles into candidate
// regions and keeps every region whose enclosed text runs form a grid of at
// least 2x2 cells.
func detectTables(texts []pdf.Text, rects []pdf.Rect) []tableRegion {
	if len(rects) == 0 {
		return nil
	}

	boxes := make([]box, 0, len(rects))
	for _, r := range rects {
		boxes = append(boxes, box{
			minX: r.Min.X, minY: r.Min.Y,
			maxX: r.Max.X, maxY: r.Max.Y,
		})
	}

	var regions []tableRegion
	for _, cl := range clusterBoxes(boxes) {
		if cl.count < minRegionRects {
			continue
		}
		grid := gridFromRuns(cl.bounds, texts)
		if grid == nil {
			continue
		}
		regions = append(regions, tableRegion{bounds: cl.bounds, grid: grid})
	}
	return regions
}

type boxCluster struct {
	bounds box
	count  int
}

// clusterBoxes merges overlapping or adjoining boxes until stable.
func clusterBoxes(boxes []box) []boxCluster {
	clusters := make([]boxCluster, 0, len(boxes))
	for _, b := range boxes {
		clusters = append(clusters, boxCluster{bounds: b, count: 1})
	}

	for {
		merged := false
		for i := 0; i < len(clusters) && !merged; i++ {
			for j := i + 1; j < len(clusters); j++ {
				if clusters[i].bounds.near(clusters[j].bounds) {
					clusters[i].bounds = clusters[i].bounds.union(clusters[j].bounds)
					clusters[i].count += clusters[j].count
					clusters = append(clusters[:j], clusters[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			return clusters
		}
	}
}

// gridFromRuns reads a cell grid out of the runs inside the region. Rows
// come from line grouping, columns from clustering run start positions.
// Returns nil when the region does not hold at least a 2x2 grid.
func gridFromRuns(region box, texts []pdf.Text) [][]string {
	var inside []pdf.Text
	for _, t := range texts {
		if region.contains(runCenterX(t), t.Y) {
			inside = append(inside, t)
		}
	}
	if len(inside) == 0 {
		return nil
	}

	lines := groupLines(inside)
	if len(lines) < minTableRows {
		return nil
	}

	var starts []float64
	for _, line := range lines {
		for _, t := range line {
			starts = append(starts, t.X)
		}
	}
	colStops := clusterValues(starts, colTol)
	if len(colStops) < minTableCols {
		return nil
	}

	grid := make([][]string, len(lines))
	for r, line := range lines {
		cells := make([][]pdf.Text, len(colStops))
		for _, t := range line {
			c := columnFor(t.X, colStops)
			cells[c] = append(cells[c], t)
		}
		row := make([]string, len(colStops))
		for c, runs := range cells {
			row[c] = strings.TrimSpace(joinRuns(runs))
		}
		grid[r] = row
	}
	return grid
}

func columnFor(x float64, stops []float64) int {
	col := 0
	for i, s := range stops {
		if x >= s-colTol {
			col = i
		}
	}
	return col
}

// bodyText assembles reading-order text from the runs outside every table
// region: lines top to bottom, runs left to right.
func bodyText(texts []pdf.Text, regions []tableRegion) string {
	var kept []pdf.Text
	for _, t := range texts {
		excluded := false
		for _, reg := range regions {
			if reg.bounds.contains(runCenterX(t), t.Y) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range groupLines(kept) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(joinRuns(line))
	}
	return sb.String()
}

// groupLines buckets runs into lines by Y proximity. PDF Y grows upward,
// so lines are ordered by descending Y, runs within a line by X.
func groupLines(texts []pdf.Text) [][]pdf.Text {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]pdf.Text
	var lineY float64
	for _, t := range sorted {
		if len(lines) == 0 || lineY-t.Y > lineTol {
			lines = append(lines, []pdf.Text{t})
			lineY = t.Y
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], t)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// joinRuns concatenates X-sorted runs, inserting a space only where the
// horizontal gap between runs suggests a word boundary.
func joinRuns(runs []pdf.Text) string {
	var sb strings.Builder
	var prevEnd float64
	for i, t := range runs {
		if i > 0 && t.X-prevEnd > wordGap {
			sb.WriteString(" ")
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return sb.String()
}

// clusterValues collapses values closer than tol into one representative
// (the cluster's first value), returned in ascending order.
func clusterValues(vals []float64, tol float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	reps := []float64{sorted[0]}
	last := sorted[0]
	for _, v := range sorted[1:] {
		if v-last > tol {
			reps = append(reps, v)
		}
		last = v
	}
	return reps
}

func runCenterX(t pdf.Text) float64 {
	return t.X + t.W/2
}
