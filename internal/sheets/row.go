package sheets

import (
	"fmt"
	"strings"

	"moneyflow/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []any{"ID", "Date", "Description", "Type", "Amount", "Category", "Account", "Payment Method", "Tags"}

// Row is the spreadsheet projection of a transaction. Category and account
// are resolved to display names when the worker writes the row.
type Row struct {
	ID            string
	Date          string
	Description   string
	Type          string
	Amount        string
	Category      string
	Account       string
	PaymentMethod string
	Tags          string
}

func RowFromTransaction(t core.Transaction, categoryName, accountName string) Row {
	if categoryName == "" {
		categoryName = core.FallbackCategoryName
	}
	return Row{
		ID:            t.ID,
		Date:          t.Date,
		Description:   t.Description,
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		Category:      categoryName,
		Account:       accountName,
		PaymentMethod: t.PaymentMethod,
		Tags:          strings.Join(t.Tags, ", "),
	}
}

// Values returns the cells in sheet column order.
func (r Row) Values() []any {
	return []any{r.ID, r.Date, r.Description, r.Type, r.Amount, r.Category, r.Account, r.PaymentMethod, r.Tags}
}

// RowFromValues is the inverse of Values. Short rows are padded with blanks.
func RowFromValues(cells []any) Row {
	get := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(cells[i]))
	}
	return Row{
		ID:            get(0),
		Date:          get(1),
		Description:   get(2),
		Type:          get(3),
		Amount:        get(4),
		Category:      get(5),
		Account:       get(6),
		PaymentMethod: get(7),
		Tags:          get(8),
	}
}
