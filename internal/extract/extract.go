// Package extract turns free-form text such as "nubank mercado hoje r$ 132,49
// no débito" into proposed transactions using a language model. Nothing is
// persisted here; callers decide what to do with the proposals.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"moneyflow/internal/core"
)

// ErrNotConfigured is returned when no model credentials are available.
var ErrNotConfigured = errors.New("LLM API key not configured")

// Generator sends one prompt to a language model and returns its raw text.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Extractor struct {
	gen   Generator
	today func() time.Time
}

// New returns an Extractor. A nil generator yields ErrNotConfigured on use.
func New(gen Generator) *Extractor {
	return &Extractor{gen: gen, today: time.Now}
}

type modelItem struct {
	Description   string               `json:"description"`
	Amount        core.Money           `json:"amount"`
	Type          core.TransactionType `json:"type"`
	CategoryName  string               `json:"category_name"`
	PaymentMethod string               `json:"payment_method"`
	Date          string               `json:"date"`
	BankName      string               `json:"bank_name"`
}

// Extract asks the model for transactions found in text and resolves the
// proposed category and bank names against the known categories and accounts.
func (e *Extractor) Extract(ctx context.Context, text string, categories []core.Category, accounts []core.Account) ([]core.ExtractedItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyText
	}
	if e.gen == nil {
		return nil, ErrNotConfigured
	}

	raw, err := e.gen.Generate(ctx, systemPrompt(categories, accounts, e.today()), text)
	if err != nil {
		return nil, fmt.Errorf("AI extraction failed: %w", err)
	}

	var parsed struct {
		Items []modelItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		slog.ErrorContext(ctx, "Failed to parse model response",
			"component", "extract", "error", err, "response_length", len(raw))
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	items := make([]core.ExtractedItem, 0, len(parsed.Items))
	for _, m := range parsed.Items {
		items = append(items, resolve(m, categories, accounts))
	}
	slog.InfoContext(ctx, "Extracted transactions from text",
		"component", "extract", "count", len(items))
	return items, nil
}

func resolve(m modelItem, categories []core.Category, accounts []core.Account) core.ExtractedItem {
	if m.Type == "" {
		m.Type = core.Expense
	}
	if m.BankName == "" {
		m.BankName = "other"
	}
	item := core.ExtractedItem{
		Description:   m.Description,
		Amount:        m.Amount,
		Type:          m.Type,
		CategoryName:  m.CategoryName,
		Date:          m.Date,
		PaymentMethod: m.PaymentMethod,
		BankName:      m.BankName,
	}

	if c, ok := matchCategory(m.CategoryName, m.Type, categories); ok {
		item.CategoryID = c.ID
		item.CategoryName = c.Name
	}
	if a, ok := matchAccount(m.BankName, accounts); ok {
		item.SuggestedAccountID = a.ID
		item.SuggestedAccountName = a.Name
	}
	return item
}

// matchCategory prefers an exact case-insensitive name match, then the first
// category of the same type, then the first category at all.
func matchCategory(name string, typ core.TransactionType, categories []core.Category) (core.Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	for _, c := range categories {
		if c.Type == typ {
			return c, true
		}
	}
	if len(categories) > 0 {
		return categories[0], true
	}
	return core.Category{}, false
}

func matchAccount(bank string, accounts []core.Account) (core.Account, bool) {
	for _, a := range accounts {
		if a.BankIcon == bank || strings.EqualFold(a.BankName, bank) {
			return a, true
		}
	}
	return core.Account{}, false
}

// cleanModelJSON drops Markdown code fences the model may wrap around JSON.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return strings.Trim(s, "`")
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
