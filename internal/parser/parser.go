package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docqa/internal/config"
	"docqa/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const defaultPageNumber = 1

// Extract turns raw document bytes into ordered chunks, routed by file
// extension. A document that yields no chunks at all is an ExtractionError.
func Extract(fileName string, data []byte, cfg *config.Config) ([]models.Chunk, error) {
	// if config is nil, use default values
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.ApplyDefaults()
	windowSize := cfg.RAG.WindowSize

	var chunks []models.Chunk
	var err error
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		chunks, err = extractPDF(data, fileName, windowSize)
	case ".docx":
		chunks, err = extractDOCX(data, fileName, windowSize)
	case ".pptx":
		chunks, err = extractPPTX(data, fileName, windowSize)
	case ".xlsx":
		chunks, err = extractXLSX(data, fileName)
	case ".ods":
		chunks, err = extractODS(data, fileName)
	case ".md", ".markdown":
		chunks, err = extractMarkdown(data, fileName, windowSize)
	case ".txt":
		chunks, err = extractText(data, fileName, windowSize)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, &models.ExtractionError{File: fileName}
	}
	return chunks, nil
}

func extractPDF(data []byte, fileName string, windowSize int) ([]models.Chunk, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		chunks = append(chunks, extractPage(content.Text, content.Rect, fileName, i, windowSize)...)
	}
	return chunks, nil
}

// extractPage runs the per-page pipeline: detect table regions, emit one
// table chunk each, assemble body text with table regions excluded, strip
// any table text that still leaked through, then window the remainder.
func extractPage(texts []pdf.Text, rects []pdf.Rect, fileName string, pageNum, windowSize int) []models.Chunk {
	regions := detectTables(texts, rects)

	var chunks []models.Chunk
	for _, reg := range regions {
		chunks = append(chunks, models.Chunk{
			Kind:  models.ChunkTable,
			Table: reg.grid,
			File:  fileName,
			Page:  pageNum,
		})
	}

	body := bodyText(texts, regions)
	for _, reg := range regions {
		// region matching in the extraction library is not exact
		body = strings.ReplaceAll(body, renderGrid(reg.grid), "")
	}
	body = trimBlankLines(body)

	for _, win := range splitWindows(body, windowSize) {
		chunks = append(chunks, models.Chunk{
			Kind: models.ChunkText,
			Text: win,
			File: fileName,
			Page: pageNum,
		})
	}
	return chunks
}

func extractDOCX(data []byte, fileName string, windowSize int) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	body := trimBlankLines(r.Editable().GetContent())
	var chunks []models.Chunk
	for _, win := range splitWindows(body, windowSize) {
		chunks = append(chunks, models.Chunk{
			Kind: models.ChunkText,
			Text: win,
			File: fileName,
			Page: defaultPageNumber, // DOCX has no page numbers
		})
	}
	return chunks, nil
}

// extractPPTX reads the slide XML out of the archive. Each slide's text is
// windowed separately, with the 1-based slide index standing in for the page.
func extractPPTX(data []byte, fileName string, windowSize int) ([]models.Chunk, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	slideNum := 0
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") {
			continue
		}
		slideNum++
		rc, err := f.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		body := trimBlankLines(slideText(string(raw)))
		for _, win := range splitWindows(body, windowSize) {
			chunks = append(chunks, models.Chunk{
				Kind: models.ChunkText,
				Text: win,
				File: fileName,
				Page: slideNum,
			})
		}
	}
	return chunks, nil
}

// slideText pulls the <a:t> text runs out of a slide's drawing XML.
func slideText(xmlContent string) string {
	var sb strings.Builder
	for i, part := range strings.Split(xmlContent, "<a:t>") {
		if i == 0 {
			continue
		}
		if end := strings.Index(part, "</a:t>"); end >= 0 {
			sb.WriteString(part[:end] + " ")
		}
	}
	return sb.String()
}

func extractXLSX(data []byte, fileName string) ([]models.Chunk, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var grid [][]string
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			grid = append(grid, cells)
		}
		if gridEmpty(grid) {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Kind:  models.ChunkTable,
			Table: grid,
			File:  fileName,
			Page:  sheetNum + 1, // 1-based sheet index stands in for the page
		})
	}
	return chunks, nil
}

func extractODS(data []byte, fileName string) ([]models.Chunk, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		if gridEmpty(rows) {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Kind:  models.ChunkTable,
			Table: rows,
			File:  fileName,
			Page:  sheetNum + 1,
		})
	}
	return chunks, nil
}

func extractText(data []byte, fileName string, windowSize int) ([]models.Chunk, error) {
	body := trimBlankLines(string(data))
	var chunks []models.Chunk
	for _, win := range splitWindows(body, windowSize) {
		chunks = append(chunks, models.Chunk{
			Kind: models.ChunkText,
			Text: win,
			File: fileName,
			Page: defaultPageNumber,
		})
	}
	return chunks, nil
}

// extractMarkdown walks the GFM syntax tree: pipe tables become table
// chunks, everything else is collected as body text and windowed.
func extractMarkdown(data []byte, fileName string, windowSize int) ([]models.Chunk, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(data))

	var chunks []models.Chunk
	var body strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *east.Table:
			grid := tableGridFromAST(t, data)
			if !gridEmpty(grid) {
				chunks = append(chunks, models.Chunk{
					Kind:  models.ChunkTable,
					Table: grid,
					File:  fileName,
					Page:  defaultPageNumber,
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			body.Write(t.Segment.Value(data))
		default:
			if n.Type() == ast.TypeBlock && body.Len() > 0 {
				body.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	for _, win := range splitWindows(trimBlankLines(body.String()), windowSize) {
		chunks = append(chunks, models.Chunk{
			Kind: models.ChunkText,
			Text: win,
			File: fileName,
			Page: defaultPageNumber,
		})
	}
	return chunks, nil
}

func tableGridFromAST(tbl ast.Node, src []byte) [][]string {
	var grid [][]string
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(nodeText(cell, src)))
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}
	return grid
}

func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func gridEmpty(grid [][]string) bool {
	for _, row := range grid {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}
