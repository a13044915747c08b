// Package importer converts bank statement CSV exports into transactions.
//
// Column roles are guessed from header names. Amounts carry the direction:
// negative values become expenses and positive values income. Rows that
// cannot be converted are reported with their line number instead of
// aborting the whole import.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"budgetwise/internal/categorize"
	"budgetwise/internal/core"
)

const defaultDescription = "Transaction"

var (
	ErrNoRows       = errors.New("no transactions found in file")
	ErrMissingField = errors.New("missing date or amount column")
	ErrZeroAmount   = fmt.Errorf("%w: zero amount", core.ErrInvalidAmount)
)

var (
	slashDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	isoDate   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Columns holds the index of each recognised column, -1 when absent.
type Columns struct {
	Date        int
	Amount      int
	Description int
	Category    int
}

// Row is one data line of the file. Line is 1-based and counts the header.
type Row struct {
	Line   int
	Fields []string
}

// RowError describes a row that could not be imported.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e RowError) Unwrap() error { return e.Err }

// Result is the outcome of an import.
type Result struct {
	Transactions []core.Transaction
	Errors       []RowError
}

// Importer converts rows using a categorization table for rows without an
// explicit category.
type Importer struct {
	rules *categorize.Rules
}

// New returns an Importer. A nil rules uses the default keyword table.
func New(rules *categorize.Rules) *Importer {
	if rules == nil {
		rules = categorize.Default()
	}
	return &Importer{rules: rules}
}

// Parse reads the header line and the data rows. Rows whose field count
// differs from the header are dropped. Fields are trimmed and stripped of
// stray quotes. An empty input yields no headers and no rows.
func Parse(r io.Reader) ([]string, []Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var headers []string
	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if headers == nil {
			headers = clean(rec)
			continue
		}
		if len(rec) != len(headers) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{Line: line, Fields: clean(rec)})
	}
	return headers, rows, nil
}

func clean(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(strings.ReplaceAll(f, `"`, ""))
	}
	return out
}

// DetectColumns maps headers to column roles by case-insensitive substring.
// When several headers match a role the last one wins.
func DetectColumns(headers []string) Columns {
	cols := Columns{Date: -1, Amount: -1, Description: -1, Category: -1}
	for i, header := range headers {
		h := strings.ToLower(header)
		if strings.Contains(h, "date") {
			cols.Date = i
		}
		if containsAny(h, "amount", "debit", "withdrawal") {
			cols.Amount = i
		}
		if containsAny(h, "description", "merchant", "payee") {
			cols.Description = i
		}
		if containsAny(h, "category", "type") {
			cols.Category = i
		}
	}
	return cols
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ParseDate accepts MM/DD/YYYY, MM/DD/YY and YYYY-MM-DD. Two-digit years
// below 50 are in the 2000s, the rest in the 1900s.
func ParseDate(s string) (core.Date, error) {
	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
		}
		return core.Date{Time: t}, nil
	}
	if m := isoDate.FindString(s); m != "" {
		return core.ParseDate(m)
	}
	return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// RowToTransaction converts one row. The returned transaction has no ID or
// creation time; those are assigned when it is stored.
func (im *Importer) RowToTransaction(fields []string, cols Columns) (core.Transaction, error) {
	if cols.Date < 0 || cols.Amount < 0 || cols.Date >= len(fields) || cols.Amount >= len(fields) {
		return core.Transaction{}, ErrMissingField
	}
	dateStr, amountStr := fields[cols.Date], fields[cols.Amount]
	if dateStr == "" || amountStr == "" {
		return core.Transaction{}, ErrMissingField
	}

	cents, err := core.ParseSignedCents(amountStr)
	if err != nil {
		return core.Transaction{}, err
	}
	if cents == 0 {
		return core.Transaction{}, ErrZeroAmount
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}

	description := field(fields, cols.Description)
	if description == "" {
		description = defaultDescription
	}

	category := strings.ToLower(field(fields, cols.Category))
	if category == "" {
		category = im.rules.Categorize(description)
	}

	tx := core.Transaction{
		Type:        core.Income,
		Amount:      core.Cents(cents),
		Category:    category,
		Description: description,
		Date:        date,
	}
	if cents < 0 {
		tx.Type = core.Expense
		tx.Amount = core.Cents(-cents)
	}
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// Import parses r and converts every row. It fails only when the file is
// unreadable, lacks a date or amount column, or yields no transactions.
func (im *Importer) Import(r io.Reader) (Result, error) {
	headers, rows, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, ErrNoRows
	}
	cols := DetectColumns(headers)
	if cols.Date < 0 || cols.Amount < 0 {
		return Result{}, ErrMissingField
	}

	var res Result
	for _, row := range rows {
		tx, err := im.RowToTransaction(row.Fields, cols)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: row.Line, Err: err})
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	if len(res.Transactions) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}
