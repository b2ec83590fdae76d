// Package export renders tabular reports to files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var (
	ErrNoHeaders     = errors.New("dataset has no headers")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Dataset is a titled table. Every row has one cell per header; missing
// trailing cells render empty.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (d Dataset) cells(row []string) []string {
	record := make([]string, len(d.Headers))
	copy(record, row)
	return record
}

type Exporter interface {
	Render(data Dataset) ([]byte, error)
	Extension() string
}

func exporters() []Exporter {
	return []Exporter{NewCSVExporter(), NewPDFExporter()}
}

// Extensions lists the supported file extensions; the first is the default.
func Extensions() []string {
	all := exporters()
	exts := make([]string, len(all))
	for i, e := range all {
		exts[i] = e.Extension()
	}
	return exts
}

// ForPath picks an exporter from the file extension.
func ForPath(path string) (Exporter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exporters() {
		if e.Extension() == ext {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Extension() string { return ".csv" }

// Render produces CSV bytes. The title is not part of the output.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoHeaders
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.cells(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFExporter lays a dataset out as a single bordered table on A4 pages.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Extension() string { return ".pdf" }

func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoHeaders
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, value := range data.cells(row) {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
