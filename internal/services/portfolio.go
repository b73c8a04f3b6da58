package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

// QuoteSource returns a market quote; implementations degrade to placeholder
// data instead of failing.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string, assetType core.AssetType) core.Quote
}

type PortfolioService struct {
	store  ledger.HoldingStore
	quotes QuoteSource
}

func NewPortfolioService(store ledger.HoldingStore, quotes QuoteSource) *PortfolioService {
	return &PortfolioService{store: store, quotes: quotes}
}

func (s *PortfolioService) List(ctx context.Context) ([]core.StockHolding, error) {
	hs, err := s.store.ListHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	if hs == nil {
		hs = []core.StockHolding{}
	}
	return hs, nil
}

func (s *PortfolioService) Create(ctx context.Context, in core.StockInput) (core.StockHolding, error) {
	h := in.Holding(uuid.NewString(), time.Now().UTC())
	if err := h.Validate(); err != nil {
		return core.StockHolding{}, err
	}
	if err := s.store.CreateHolding(ctx, h); err != nil {
		return core.StockHolding{}, fmt.Errorf("save holding: %w", err)
	}
	return h, nil
}

func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteHolding(ctx, id)
}

func (s *PortfolioService) Grouped(ctx context.Context) ([]core.StockPosition, error) {
	hs, err := s.store.ListHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return GroupHoldings(hs), nil
}

func (s *PortfolioService) Quote(ctx context.Context, symbol string, assetType core.AssetType) (core.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return core.Quote{}, core.ErrEmptySymbol
	}
	if assetType == "" {
		assetType = core.BRStock
	}
	if !assetType.Valid() {
		return core.Quote{}, core.ErrInvalidAssetType
	}
	return s.quotes.Quote(ctx, symbol, assetType), nil
}

// GroupHoldings folds holdings into one position per symbol and asset type,
// in order of first appearance.
func GroupHoldings(hs []core.StockHolding) []core.StockPosition {
	type key struct {
		symbol string
		asset  core.AssetType
	}
	index := make(map[key]int)
	out := []core.StockPosition{}
	for _, h := range hs {
		k := key{h.Symbol, h.AssetType}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, core.StockPosition{Symbol: h.Symbol, AssetType: h.AssetType})
		}
		p := &out[i]
		p.TotalQuantity = p.TotalQuantity.Add(h.Quantity)
		p.TotalInvested = p.TotalInvested.Add(h.PurchasePrice.Mul(h.Quantity))
		p.Positions = append(p.Positions, h)
	}
	for i := range out {
		out[i].AveragePrice = out[i].TotalInvested.DivQuantity(out[i].TotalQuantity)
	}
	return out
}
