package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"findash/internal/core"
)

// Column headers of the finance export.
const (
	ColDate           = "Date"
	ColAccount        = "Account"
	ColCategory       = "Category"
	ColTags           = "Tags"
	ColExpenseAmount  = "Expense amount"
	ColIncomeAmount   = "Income amount"
	ColCurrency       = "Currency"
	ColMainCurrency   = "Main currency"
	ColInMainCurrency = "In main currency"
	ColDescription    = "Description"
)

// Columns lists the export layout in file order.
var Columns = []string{
	ColDate, ColAccount, ColCategory, ColTags, ColExpenseAmount,
	ColIncomeAmount, ColCurrency, ColMainCurrency, ColInMainCurrency, ColDescription,
}

var requiredColumns = []string{ColDate, ColCategory, ColExpenseAmount, ColIncomeAmount}

var ErrMissingColumns = errors.New("missing required columns")

// ParseRecords converts a header row plus data rows into transactions.
// Columns are matched by name, case-insensitively, so extra or reordered
// columns are fine. Malformed amounts fail with the 1-based row number.
func ParseRecords(rows [][]string) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	idx := headerIndex(rows[0])
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	out := make([]core.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		tx, err := parseRow(idx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// ReadCSV parses a CSV export.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseRecords(rows)
}

// WriteCSV writes transactions in the export layout.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, tx := range txs {
		date := ""
		if tx.HasDate() {
			date = tx.Date.Format(core.DateLayout)
		}
		rec := []string{
			date, tx.Account, tx.Category, tx.Tags,
			tx.ExpenseAmount.StringFixed(2), tx.IncomeAmount.StringFixed(2),
			tx.Currency, tx.MainCurrency, tx.InMainCurrency.StringFixed(2), tx.Description,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseRow(idx map[string]int, row []string) (core.Transaction, error) {
	get := func(col string) string {
		i, ok := idx[strings.ToLower(col)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	tx := core.Transaction{
		Account:      get(ColAccount),
		Category:     get(ColCategory),
		Tags:         get(ColTags),
		Currency:     get(ColCurrency),
		MainCurrency: get(ColMainCurrency),
		Description:  get(ColDescription),
	}
	// unparsable dates keep the row with no date
	if d, err := core.ParseDate(get(ColDate)); err == nil {
		tx.Date = d
	}

	var err error
	if tx.ExpenseAmount, err = core.ParseAmountOrZero(get(ColExpenseAmount)); err != nil {
		return tx, fmt.Errorf("%s: %w", ColExpenseAmount, err)
	}
	if tx.IncomeAmount, err = core.ParseAmountOrZero(get(ColIncomeAmount)); err != nil {
		return tx, fmt.Errorf("%s: %w", ColIncomeAmount, err)
	}
	if tx.InMainCurrency, err = core.ParseAmountOrZero(get(ColInMainCurrency)); err != nil {
		return tx, fmt.Errorf("%s: %w", ColInMainCurrency, err)
	}
	tx.ResolveMainCurrency()
	return tx, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
