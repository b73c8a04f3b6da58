package sheets

import (
	"context"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionMirror keeps one spreadsheet row per transaction, keyed by
	// the transaction id in the first column.
	TransactionMirror interface {
		// Upsert writes row in place when its id is already present and
		// appends it otherwise. It returns the A1 reference of the row.
		Upsert(ctx context.Context, row Row) (ref string, err error)
		// Remove clears the row holding id. A missing row is not an error.
		Remove(ctx context.Context, id string) error
	}

	// MirrorReader lists the rows currently mirrored.
	MirrorReader interface {
		Rows(ctx context.Context) ([]Row, error)
	}
)
