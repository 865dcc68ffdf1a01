package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/budgetflow/internal/encoding"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

// MaxRows caps the number of data rows accepted from a single file.
const MaxRows = 10000

var (
	ErrNoProfile = errors.New("no matching CSV layout: expected columns type;amount;category[;description] or amount;category[;description]")
	// ErrInvalidFile marks input that cannot be read as CSV at all.
	ErrInvalidFile = errors.New("invalid import file")
)

// Row is a parsed data row. Line is 1-based in the source file.
type Row struct {
	Line   int
	Params transaction.CreateParams
}

type RowError struct {
	Line    int
	Message string
}

// Result is the outcome of parsing one file. Rows that could not be parsed are
// reported in Errors and do not abort the parse.
type Result struct {
	Profile   string
	Charset   string
	Delimiter rune
	Rows      []Row
	Errors    []RowError
}

// Parse decodes r to UTF-8, detects the delimiter and the column layout, and
// turns every data row into create parameters. UserID is left unset.
func Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: detect encoding: %w", ErrInvalidFile, err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %w", ErrInvalidFile, err)
	}

	delim := sniffDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := readRecords(reader)
	if err != nil {
		return nil, err
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoProfile
	}

	res := &Result{
		Profile:   profile.Name,
		Charset:   charset,
		Delimiter: delim,
	}

	if err := parseRows(res, profile, cols, rows[headerIdx+1:]); err != nil {
		return nil, err
	}

	return res, nil
}

// record is a CSV row with the source line it starts on. encoding/csv skips
// empty lines, so positions cannot be derived from the row index.
type record struct {
	line  int
	cells []string
}

func readRecords(reader *csv.Reader) ([]record, error) {
	var rows []record

	for {
		cells, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %w", ErrInvalidFile, err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, record{line: line, cells: cells})
	}
}

// sniffDelimiter picks the candidate that occurs most often on the first
// non-empty line. Semicolon wins ties.
func sniffDelimiter(data []byte) rune {
	var line string

	for l := range strings.Lines(string(data)) {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best, bestCount := ';', strings.Count(line, ";")

	for _, c := range []rune{',', '\t'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}

	return best
}

// detectProfile scans rows for a header that matches a known profile. Files
// may carry a preamble before the header.
func detectProfile(rows []record) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := newColIndex(row.cells)

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func parseRows(res *Result, p *Profile, cols colIndex, rows []record) error {
	var (
		typeIdx = cols.find(colType)
		amtIdx  = cols.find(colAmount)
		catIdx  = cols.find(colCategory)
		descIdx = cols.find(colDescription)
	)

	for _, rec := range rows {
		line, row := rec.line, rec.cells

		if blank(row) {
			continue
		}

		if len(res.Rows) == MaxRows {
			return fmt.Errorf("%w: more than %d rows", ErrInvalidFile, MaxRows)
		}

		amount, txType, err := parseRowAmount(p, row, amtIdx, typeIdx)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		res.Rows = append(res.Rows, Row{
			Line: line,
			Params: transaction.CreateParams{
				Type:        txType,
				Amount:      amount,
				Category:    cellValue(row, catIdx),
				Description: cellValue(row, descIdx),
			},
		})
	}

	return nil
}

func parseRowAmount(p *Profile, row []string, amtIdx, typeIdx int) (decimal.Decimal, transaction.Type, error) {
	raw := cellValue(row, amtIdx)
	if raw == "" {
		return decimal.Decimal{}, "", errors.New("missing amount")
	}

	amount, err := parseAmount(raw)
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("invalid amount %q", raw)
	}

	switch p.AmountMode {
	case amountTyped:
		return amount, transaction.Type(strings.ToLower(cellValue(row, typeIdx))), nil
	case amountSigned:
		if amount.IsNegative() {
			return amount.Neg(), transaction.TypeExpense, nil
		}

		return amount, transaction.TypeIncome, nil
	}

	return decimal.Decimal{}, "", fmt.Errorf("unsupported amount mode %d", p.AmountMode)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
