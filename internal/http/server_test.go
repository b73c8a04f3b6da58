package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moneyflow/internal/core"
	"moneyflow/internal/extract"
	"moneyflow/internal/ledger/memory"
	"moneyflow/internal/services"
)

type fakeQuotes struct{}

func (fakeQuotes) Quote(_ context.Context, symbol string, at core.AssetType) core.Quote {
	return core.Quote{Symbol: symbol, AssetType: at, Price: core.NewMoney(38.1), Currency: "BRL", Source: "test"}
}

type fakeGenerator struct{ response string }

func (f fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return f.response, nil
}

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T, gen extract.Generator) *testServer {
	t.Helper()
	store := memory.New()
	reconciler := services.NewReconciler(store)

	var ex *extract.Extractor
	if gen != nil {
		ex = extract.New(gen)
	}
	srv := NewServer(":0", Dependencies{
		Transactions: services.NewTransactionService(store, reconciler, nil),
		Accounts:     services.NewAccountService(store),
		Categories:   services.NewCategoryService(store),
		Settings:     services.NewSettingsService(store),
		Portfolio:    services.NewPortfolioService(store, fakeQuotes{}),
		Invoices:     services.NewInvoiceProjector(store, store),
		Dashboard:    services.NewDashboardAggregator(store, store),
		Extractor:    ex,
		Ping:         func(context.Context) error { return nil },
	}, Options{CORSOrigins: []string{"*"}, RateLimitPerMinute: 1000})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (ts *testServer) balance(t *testing.T, id string) string {
	t.Helper()
	a, err := ts.store.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	return a.Balance.String()
}

func TestRootHealthAndReady(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("root status=%d", rec.Code)
	}
	root := decode[map[string]string](t, rec)
	if root["message"] != "MoneyFlow API - Seu Dinheiro Sob Controle Total" || root["version"] != "2.0.0" {
		t.Errorf("unexpected root body %v", root)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if rec := ts.do(t, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
	}
}

func TestReadyReportsStorageFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.deps.Ping = func(context.Context) error { return errors.New("database is locked") }

	rec := ts.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestTransactionLifecycleKeepsBalance(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/accounts", `{"name":"Nubank","type":"bank","balance":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create account status=%d body=%s", rec.Code, rec.Body)
	}
	acc := decode[core.Account](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/transactions",
		`{"description":"Mercado","amount":"132,49","type":"expense","category_id":"c1","account_id":"`+acc.ID+`","date":"2025-01-22","tags":["casa","casa"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create transaction status=%d body=%s", rec.Code, rec.Body)
	}
	tx := decode[core.Transaction](t, rec)
	if tx.PaymentMethod != "cash" || len(tx.Tags) != 1 {
		t.Errorf("defaults not applied: %+v", tx)
	}
	if got := ts.balance(t, acc.ID); got != "-32.49" {
		t.Fatalf("balance after create = %s", got)
	}

	rec = ts.do(t, http.MethodPut, "/api/transactions/"+tx.ID,
		`{"description":"Salário","amount":1000,"type":"income","category_id":"c2","account_id":"`+acc.ID+`","date":"2025-01-05"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body)
	}
	if body := decode[map[string]string](t, rec); body["message"] != "Transaction updated" || body["id"] != tx.ID {
		t.Errorf("unexpected update body %v", body)
	}
	if got := ts.balance(t, acc.ID); got != "1100" {
		t.Fatalf("balance after update = %s", got)
	}

	rec = ts.do(t, http.MethodGet, "/api/transactions?type=income&month=2025-01", "")
	if list := decode[[]core.Transaction](t, rec); len(list) != 1 || !list[0].CreatedAt.Equal(tx.CreatedAt) {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = ts.do(t, http.MethodDelete, "/api/transactions/"+tx.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rec.Code)
	}
	if got := ts.balance(t, acc.ID); got != "100" {
		t.Fatalf("balance after delete = %s", got)
	}

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		body := ""
		if method == http.MethodPut {
			body = `{"description":"x","amount":1,"type":"income","date":"2025-01-01"}`
		}
		rec := ts.do(t, method, "/api/transactions/"+tx.ID, body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s unknown id status=%d", method, rec.Code)
		}
		if got := decode[map[string]string](t, rec)["detail"]; got != "Transaction not found" {
			t.Errorf("detail = %q", got)
		}
	}
}

func TestTransactionValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"description":`, http.StatusBadRequest},
		{"empty description", `{"description":"","amount":1,"type":"income","date":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"description":"a","amount":-1,"type":"income","date":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"description":"a","amount":1,"type":"transfer","date":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"long description", `{"description":"` + strings.Repeat("a", 201) + `","amount":1,"type":"income","date":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"missing account is tolerated", `{"description":"a","amount":1,"type":"income","account_id":"ghost","date":"2025-01-01"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.status, rec.Body)
			}
		})
	}

}

func TestLooseMonthMatchesAsDatePrefix(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, date := range []string{"2025-01-10", "2025-10-02", "2025-11-30"} {
		body := `{"description":"d","amount":1,"type":"expense","date":"` + date + `"}`
		if rec := ts.do(t, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusOK {
			t.Fatalf("create %s status=%d", date, rec.Code)
		}
	}

	tests := []struct {
		month string
		want  int
	}{
		{"2025-01", 1},
		{"2025-1", 2},
		{"jan", 0},
	}
	for _, tt := range tests {
		rec := ts.do(t, http.MethodGet, "/api/transactions?month="+tt.month, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("month=%s status=%d", tt.month, rec.Code)
		}
		if got := decode[[]core.Transaction](t, rec); len(got) != tt.want {
			t.Errorf("month=%s matched %d, want %d", tt.month, len(got), tt.want)
		}
	}
}

func TestAccountUpdatePreservesBalance(t *testing.T) {
	ts := newTestServer(t, nil)
	acc := decode[core.Account](t, ts.do(t, http.MethodPost, "/api/accounts", `{"name":"Carteira","type":"cash","balance":50}`))

	rec := ts.do(t, http.MethodPut, "/api/accounts/"+acc.ID, `{"name":"Carteira nova","type":"cash","balance":9999}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body)
	}
	if got := ts.balance(t, acc.ID); got != "50" {
		t.Fatalf("balance changed to %s", got)
	}

	if rec := ts.do(t, http.MethodPut, "/api/accounts/missing", `{"name":"x","type":"cash"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown account update status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/accounts", `{"name":"x","type":"savings"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid kind status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/accounts/"+acc.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("delete status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/accounts/"+acc.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rec.Code)
	}
}

func TestInvoiceEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	card := decode[core.Account](t, ts.do(t, http.MethodPost, "/api/accounts",
		`{"name":"Roxinho","type":"credit_card","credit_limit":1000,"due_day":15,"closing_day":8}`))
	bank := decode[core.Account](t, ts.do(t, http.MethodPost, "/api/accounts", `{"name":"Itaú","type":"bank"}`))

	for _, body := range []string{
		`{"description":"Jan","amount":300,"type":"expense","account_id":"` + card.ID + `","date":"2025-01-10"}`,
		`{"description":"Fev","amount":200,"type":"expense","account_id":"` + card.ID + `","date":"2025-02-10"}`,
		`{"description":"Estorno","amount":50,"type":"income","account_id":"` + card.ID + `","date":"2025-01-11"}`,
	} {
		if rec := ts.do(t, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusOK {
			t.Fatalf("create status=%d", rec.Code)
		}
	}

	rec := ts.do(t, http.MethodGet, "/api/accounts/"+card.ID+"/invoice?month=2025-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice status=%d body=%s", rec.Code, rec.Body)
	}
	inv := decode[core.Invoice](t, rec)
	if inv.Total.String() != "300" || inv.RemainingLimit.String() != "700" || len(inv.Transactions) != 1 {
		t.Errorf("unexpected invoice %+v", inv)
	}
	if inv.DueDay != 15 || inv.ClosingDay != 8 {
		t.Errorf("days = %d/%d", inv.DueDay, inv.ClosingDay)
	}

	for _, id := range []string{bank.ID, "missing"} {
		if rec := ts.do(t, http.MethodGet, "/api/accounts/"+id+"/invoice", ""); rec.Code != http.StatusNotFound {
			t.Errorf("invoice of %s status=%d", id, rec.Code)
		}
	}
}

func TestCategoriesDashboardAndSettings(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/categories/seed", "")
	if body := decode[map[string]any](t, rec); body["message"] != "Categories seeded successfully" || body["count"] != float64(12) {
		t.Fatalf("seed body %v", body)
	}
	rec = ts.do(t, http.MethodPost, "/api/categories/seed", "")
	if body := decode[map[string]any](t, rec); body["message"] != "Categories already exist" {
		t.Fatalf("second seed body %v", body)
	}

	cats := decode[[]core.Category](t, ts.do(t, http.MethodGet, "/api/categories", ""))
	if len(cats) != 12 || cats[0].Name != "Alimentação" {
		t.Fatalf("unexpected categories %d", len(cats))
	}

	ts.do(t, http.MethodPost, "/api/transactions", `{"description":"Mercado","amount":80,"type":"expense","category_id":"`+cats[0].ID+`","date":"2025-01-02"}`)
	ts.do(t, http.MethodPost, "/api/transactions", `{"description":"?","amount":20,"type":"expense","category_id":"gone","date":"2025-01-03"}`)
	ts.do(t, http.MethodPost, "/api/transactions", `{"description":"Salário","amount":500,"type":"income","date":"2025-01-05"}`)
	ts.do(t, http.MethodPost, "/api/transactions", `{"description":"Antigo","amount":5,"type":"expense","date":"2024-12-31"}`)

	rec = ts.do(t, http.MethodGet, "/api/dashboard/summary?month=2025-01", "")
	sum := decode[core.DashboardSummary](t, rec)
	if sum.TotalIncome.String() != "500" || sum.TotalExpense.String() != "100" || sum.Balance.String() != "400" {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.ExpenseByCategory["Alimentação"].String() != "80" || sum.ExpenseByCategory["Outros"].String() != "20" {
		t.Errorf("unexpected breakdown %v", sum.ExpenseByCategory)
	}
	if sum.TransactionsCount != 3 {
		t.Errorf("count = %d", sum.TransactionsCount)
	}

	st := decode[core.Settings](t, ts.do(t, http.MethodGet, "/api/settings", ""))
	if st.UserName != "Usuário" || st.Theme != "light" {
		t.Errorf("unexpected default settings %+v", st)
	}
	st = decode[core.Settings](t, ts.do(t, http.MethodPut, "/api/settings", `{"user_name":"Ana","theme":"dark"}`))
	if st.UserName != "Ana" || st.Theme != "dark" || st.Currency != "BRL" {
		t.Errorf("unexpected settings %+v", st)
	}
}

func TestStocksEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, body := range []string{
		`{"symbol":"petr4","quantity":10,"purchase_price":30,"purchase_date":"2025-01-02"}`,
		`{"symbol":"PETR4","quantity":10,"purchase_price":40,"purchase_date":"2025-02-02"}`,
		`{"symbol":"BTC","quantity":0.5,"purchase_price":300000,"purchase_date":"2025-01-02","asset_type":"crypto"}`,
	} {
		if rec := ts.do(t, http.MethodPost, "/api/stocks", body); rec.Code != http.StatusOK {
			t.Fatalf("create stock status=%d body=%s", rec.Code, rec.Body)
		}
	}

	grouped := decode[[]core.StockPosition](t, ts.do(t, http.MethodGet, "/api/stocks/grouped", ""))
	if len(grouped) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(grouped))
	}
	if grouped[0].Symbol != "PETR4" || grouped[0].AveragePrice.String() != "35" || grouped[0].TotalInvested.String() != "700" {
		t.Errorf("unexpected position %+v", grouped[0])
	}

	q := decode[core.Quote](t, ts.do(t, http.MethodGet, "/api/stocks/quote/petr4", ""))
	if q.Symbol != "PETR4" || q.AssetType != core.BRStock {
		t.Errorf("unexpected quote %+v", q)
	}
	if rec := ts.do(t, http.MethodGet, "/api/stocks/quote/BTC?asset_type=gold", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad asset type status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/stocks", `{"symbol":"X","quantity":0,"purchase_price":1,"purchase_date":"2025-01-01"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero quantity status=%d", rec.Code)
	}

	list := decode[[]core.StockHolding](t, ts.do(t, http.MethodGet, "/api/stocks", ""))
	if rec := ts.do(t, http.MethodDelete, "/api/stocks/"+list[0].ID, ""); rec.Code != http.StatusOK {
		t.Errorf("delete status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/stocks/"+list[0].ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rec.Code)
	}
}

func TestExtractEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/ai/extract", `{"text":"mercado 10"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["detail"]; got != "LLM API key not configured" {
		t.Errorf("detail = %q", got)
	}

	ts = newTestServer(t, fakeGenerator{response: `{"items":[{"description":"Mercado","amount":132.49,"type":"expense","category_name":"Alimentação","date":"2025-01-22","bank_name":"nubank"}]}`})
	ts.do(t, http.MethodPost, "/api/categories/seed", "")
	acc := decode[core.Account](t, ts.do(t, http.MethodPost, "/api/accounts", `{"name":"Roxinho","type":"bank","bank_icon":"nubank"}`))

	rec = ts.do(t, http.MethodPost, "/api/ai/extract", `{"text":"nubank mercado hoje r$ 132,49 no débito"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	body := decode[struct {
		Items []core.ExtractedItem `json:"items"`
	}](t, rec)
	if len(body.Items) != 1 || body.Items[0].SuggestedAccountID != acc.ID || body.Items[0].CategoryID == "" {
		t.Errorf("unexpected items %+v", body.Items)
	}

	if rec := ts.do(t, http.MethodPost, "/api/ai/extract", `{"text":"   "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty text status=%d", rec.Code)
	}
}

func TestMethodNotAllowedAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	if rec := ts.do(t, http.MethodPatch, "/api/transactions", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status=%d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status=%d", rec.Code)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	store := memory.New()
	srv := NewServer(":0", Dependencies{
		Categories: services.NewCategoryService(store),
	}, Options{RateLimitPerMinute: 1})
	defer srv.Shutdown(context.Background())

	do := func(method, path string) int {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(`{"name":"A","type":"expense"}`)))
		return rec.Code
	}
	if code := do(http.MethodPost, "/api/categories"); code != http.StatusOK {
		t.Fatalf("first POST status=%d", code)
	}
	if code := do(http.MethodPost, "/api/categories"); code != http.StatusTooManyRequests {
		t.Fatalf("second POST status=%d", code)
	}
	if code := do(http.MethodGet, "/api/categories"); code != http.StatusOK {
		t.Fatalf("GET should not be limited, status=%d", code)
	}
}
