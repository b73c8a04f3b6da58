package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"moneyflow/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantDesc  string
		wantMoney string
	}{
		{"valid", `{"description":"Mercado","amount":132.49}`, nil, "Mercado", "132.49"},
		{"amount as string", `{"description":"Mercado","amount":"10,50"}`, nil, "Mercado", "10.5"},
		{"empty body", ``, errMalformedBody, "", ""},
		{"syntax error", `{"description":`, errMalformedBody, "", ""},
		{"wrong type", `{"description":12}`, errMalformedBody, "", ""},
		{"trailing data", `{"description":"a"} {"description":"b"}`, errMalformedBody, "", ""},
		{"bad amount", `{"description":"a","amount":"abc"}`, core.ErrValidation, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))
			var in core.TransactionInput
			err := DecodeJSON(httptest.NewRecorder(), r, &in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if in.Description != tt.wantDesc || in.Amount.String() != tt.wantMoney {
				t.Errorf("got %q %s", in.Description, in.Amount)
			}
		})
	}
}

func TestParseTransactionFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.TransactionFilter
		wantErr bool
	}{
		{"empty", "", core.TransactionFilter{}, false},
		{"all filters", "type=expense&category_id=c1&account_id=a1&month=2025-01",
			core.TransactionFilter{Type: core.Expense, CategoryID: "c1", AccountID: "a1", Month: "2025-01"}, false},
		{"year only", "month=2025", core.TransactionFilter{Month: "2025"}, false},
		{"bad type", "type=transfer", core.TransactionFilter{}, true},
		{"loose month kept as prefix", "month=2025-1", core.TransactionFilter{Month: "2025-1"}, false},
		{"month with day", "month=2025-01-05", core.TransactionFilter{Month: "2025-01-05"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseTransactionFilter(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTransactionFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAssetType(t *testing.T) {
	tests := []struct {
		query   string
		want    core.AssetType
		wantErr bool
	}{
		{"", core.BRStock, false},
		{"asset_type=crypto", core.Crypto, false},
		{"asset_type=us_stock", core.USStock, false},
		{"asset_type=fii", "", true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseAssetType(q)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAssetType(%q) = %q, %v", tt.query, got, err)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  abc  ", "abc"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\ttab", "line1\nline2\ttab"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
