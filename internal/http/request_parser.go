// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of JSON request bodies and query filters.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moneyflow/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errMalformedBody marks a request body that is not valid JSON for the
// target type; it maps to 400.
var errMalformedBody = errors.New("malformed request body")

// DecodeJSON reads a single JSON value from the request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", errMalformedBody)
	}
	return nil
}

// ParseMonth returns the month query parameter. Empty means no filter.
// The value is used as a plain prefix of the ISO date; anything other than
// YYYY-MM or YYYY is still honoured but logged, since "2025-1" also
// matches 2025-10 through 2025-12.
func ParseMonth(query url.Values) string {
	month := strings.TrimSpace(query.Get("month"))
	if month != "" && !isCalendarMonth(month) {
		slog.Warn("Month filter is not YYYY-MM or YYYY, matching as date prefix",
			"component", "http",
			"month", month)
	}
	return month
}

func isCalendarMonth(month string) bool {
	if _, err := time.Parse("2006-01", month); err == nil {
		return true
	}
	_, err := time.Parse("2006", month)
	return err == nil
}

// ParseTransactionFilter extracts the transaction listing filters.
func ParseTransactionFilter(query url.Values) (core.TransactionFilter, error) {
	f := core.TransactionFilter{
		Type:       core.TransactionType(strings.TrimSpace(query.Get("type"))),
		CategoryID: sanitizeInput(query.Get("category_id")),
		AccountID:  sanitizeInput(query.Get("account_id")),
		Month:      ParseMonth(query),
	}
	if f.Type != "" && !f.Type.Valid() {
		return core.TransactionFilter{}, core.ErrInvalidType
	}
	return f, nil
}

// ParseAssetType reads asset_type, defaulting to br_stock.
func ParseAssetType(query url.Values) (core.AssetType, error) {
	at := core.AssetType(strings.TrimSpace(query.Get("asset_type")))
	if at == "" {
		return core.BRStock, nil
	}
	if !at.Valid() {
		return "", core.ErrInvalidAssetType
	}
	return at, nil
}
