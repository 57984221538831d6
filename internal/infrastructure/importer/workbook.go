package importer

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// MaxWorkbookSize is the import upload ceiling.
const MaxWorkbookSize = 10 * 1024 * 1024

// Row is one data row keyed by normalized header name.
type Row struct {
	LineNumber int
	values     map[string]string
}

// Get returns the trimmed cell value for a column, or "".
func (r *Row) Get(column string) string {
	return r.values[column]
}

// Columns returns the populated column names of the row.
func (r *Row) Columns() []string {
	cols := make([]string, 0, len(r.values))
	for c := range r.values {
		cols = append(cols, c)
	}
	return cols
}

// magic numbers for the two workbook containers: xlsx is a zip archive,
// legacy xls is an OLE2 compound file.
var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ParseWorkbook reads an .xlsx or .xls upload into header-keyed rows. The
// extension and the magic bytes must both identify a spreadsheet; renamed
// files of other types are rejected as FILE_FORMAT_ERROR before parsing.
func ParseWorkbook(fileName string, r io.Reader, size int64) ([]*Row, error) {
	if size > MaxWorkbookSize {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Import file cannot exceed 10MB").WithCause(ErrFileTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Only .xlsx and .xls files are accepted")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxWorkbookSize+1))
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Could not read the uploaded file")
	}
	if int64(len(data)) > MaxWorkbookSize {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Import file cannot exceed 10MB").WithCause(ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "The uploaded file is empty").WithCause(ErrEmptyFile)
	}

	var cells [][]string
	switch {
	case bytes.HasPrefix(data, zipMagic):
		cells, err = readXLSX(data)
	case bytes.HasPrefix(data, ole2Magic):
		cells, err = readXLS(data)
	default:
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "The file content is not a valid Excel workbook")
	}
	if err != nil {
		return nil, err
	}

	return buildRows(cells)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Could not open the workbook: "+err.Error())
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "The workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Could not read the workbook: "+err.Error())
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Could not open the workbook: "+err.Error())
	}
	return wb.ReadAllCells(math.MaxInt32), nil
}

// buildRows treats the first non-empty row as the header and keys every
// following row by the normalized header names.
func buildRows(cells [][]string) ([]*Row, error) {
	headerIdx := -1
	var header []string
	for i, row := range cells {
		if !rowIsEmpty(row) {
			headerIdx = i
			header = make([]string, len(row))
			for j, h := range row {
				header[j] = normalizeHeader(h)
			}
			break
		}
	}
	if headerIdx < 0 {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "The workbook has no header row").WithCause(ErrMissingHeader)
	}

	rows := make([]*Row, 0, len(cells)-headerIdx-1)
	for i := headerIdx + 1; i < len(cells); i++ {
		if rowIsEmpty(cells[i]) {
			continue
		}
		values := make(map[string]string, len(header))
		for j, h := range header {
			if h == "" {
				continue
			}
			if j < len(cells[i]) {
				values[h] = strings.TrimSpace(cells[i][j])
			}
		}
		// 1-based line numbers the way spreadsheets display them
		rows = append(rows, NewRow(i+1, values))
	}

	if len(rows) == 0 {
		return nil, shared.NewValidationError("The workbook contains no data rows").WithCause(ErrNoDataRows)
	}
	return rows, nil
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader maps display headers like "Last Name" to last_name.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	h = strings.ReplaceAll(h, ".", "")
	return h
}

// NewRow builds a row from already-normalized column values.
func NewRow(line int, values map[string]string) *Row {
	return &Row{LineNumber: line, values: values}
}
