// Package quotes fetches market prices for holdings: CoinGecko for crypto
// and Alpha Vantage for Brazilian and US equities, all reported in BRL.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"moneyflow/internal/cache"
	"moneyflow/internal/core"
)

const (
	DefaultCoinGeckoURL    = "https://api.coingecko.com/api/v3"
	DefaultAlphaVantageURL = "https://www.alphavantage.co"

	noteUnavailable = "Demo data - API limit reached or unavailable"
	noteError       = "Demo data - API error"
)

var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
}

// errNoData means the upstream answered without a usable quote, which
// Alpha Vantage does when its rate limit is hit.
var errNoData = errors.New("no quote data")

type Config struct {
	AlphaVantageKey string
	USDToBRL        decimal.Decimal
	Timeout         time.Duration
	CacheTTL        time.Duration
	CoinGeckoURL    string
	AlphaVantageURL string
}

func (c Config) withDefaults() Config {
	if c.AlphaVantageKey == "" {
		c.AlphaVantageKey = "demo"
	}
	if c.USDToBRL.IsZero() {
		c.USDToBRL = decimal.NewFromInt(5)
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.CoinGeckoURL == "" {
		c.CoinGeckoURL = DefaultCoinGeckoURL
	}
	if c.AlphaVantageURL == "" {
		c.AlphaVantageURL = DefaultAlphaVantageURL
	}
	return c
}

// Provider never fails: when the upstream is unreachable or returns no
// data the caller gets placeholder figures with a Note explaining why.
// Live quotes are cached per symbol and concurrent lookups of the same
// symbol share one upstream call.
type Provider struct {
	cfg    Config
	client *http.Client
	cache  *cache.LRUCache[core.Quote]
	group  singleflight.Group
	now    func() time.Time
}

func NewProvider(cfg Config) *Provider {
	cfg = cfg.withDefaults()
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache.NewLRUCache[core.Quote](512, cfg.CacheTTL),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Cache exposes the quote cache so it can be swept by a cache.Manager.
func (p *Provider) Cache() cache.Cleaner { return p.cache }

func (p *Provider) Quote(ctx context.Context, symbol string, assetType core.AssetType) core.Quote {
	key := string(assetType) + ":" + symbol
	if q, ok := p.cache.Get(key); ok {
		return q
	}

	v, _, _ := p.group.Do(key, func() (any, error) {
		q, err := p.fetch(ctx, symbol, assetType)
		switch {
		case errors.Is(err, errNoData):
			slog.WarnContext(ctx, "Quote unavailable, returning demo data",
				"component", "quotes", "symbol", symbol, "asset_type", assetType)
			return p.demo(symbol, assetType, noteUnavailable), nil
		case err != nil:
			slog.ErrorContext(ctx, "Quote lookup failed, returning demo data",
				"component", "quotes", "symbol", symbol, "asset_type", assetType, "error", err)
			return p.demo(symbol, assetType, noteError), nil
		}
		p.cache.Set(key, q)
		return q, nil
	})
	return v.(core.Quote)
}

func (p *Provider) fetch(ctx context.Context, symbol string, assetType core.AssetType) (core.Quote, error) {
	switch assetType {
	case core.Crypto:
		return p.fetchCrypto(ctx, symbol)
	case core.USStock:
		return p.fetchEquity(ctx, symbol, symbol, assetType, p.cfg.USDToBRL, "BRL (convertido)")
	default:
		return p.fetchEquity(ctx, symbol, symbol+".SA", core.BRStock, decimal.NewFromInt(1), "BRL")
	}
}

func (p *Provider) fetchCrypto(ctx context.Context, symbol string) (core.Quote, error) {
	coinID, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		coinID = strings.ToLower(symbol)
	}
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", "usd,brl")
	q.Set("include_24hr_change", "true")

	var body map[string]struct {
		BRL       *decimal.Decimal `json:"brl"`
		BRLChange decimal.Decimal  `json:"brl_24h_change"`
	}
	if err := p.getJSON(ctx, p.cfg.CoinGeckoURL+"/simple/price?"+q.Encode(), &body); err != nil {
		return core.Quote{}, err
	}
	coin, ok := body[coinID]
	if !ok || coin.BRL == nil {
		return core.Quote{}, errNoData
	}
	change := core.MoneyFromDecimal(coin.BRLChange)
	return core.Quote{
		Symbol:        strings.ToUpper(symbol),
		AssetType:     core.Crypto,
		Price:         core.MoneyFromDecimal(*coin.BRL),
		Change:        change,
		ChangePercent: change,
		Currency:      "BRL",
		Source:        "coingecko",
		Timestamp:     p.now(),
	}, nil
}

type globalQuote struct {
	Quote struct {
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

func (p *Provider) fetchEquity(ctx context.Context, symbol, upstreamSymbol string, assetType core.AssetType, rate decimal.Decimal, currency string) (core.Quote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", upstreamSymbol)
	q.Set("apikey", p.cfg.AlphaVantageKey)

	var body globalQuote
	if err := p.getJSON(ctx, p.cfg.AlphaVantageURL+"/query?"+q.Encode(), &body); err != nil {
		return core.Quote{}, err
	}
	gq := body.Quote
	if gq.Price == "" {
		return core.Quote{}, errNoData
	}

	price, err := decimal.NewFromString(gq.Price)
	if err != nil {
		return core.Quote{}, fmt.Errorf("parse price %q: %w", gq.Price, err)
	}
	change := decimalOrZero(gq.Change)
	pct := decimalOrZero(strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"))
	volume := decimalOrZero(gq.Volume)

	return core.Quote{
		Symbol:        symbol,
		AssetType:     assetType,
		Price:         core.MoneyFromDecimal(price.Mul(rate)),
		Change:        core.MoneyFromDecimal(change.Mul(rate)),
		ChangePercent: core.MoneyFromDecimal(pct),
		Volume:        core.MoneyFromDecimal(volume),
		Currency:      currency,
		Source:        "alphavantage",
		Timestamp:     p.now(),
	}, nil
}

func (p *Provider) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errNoData
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote upstream status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode quote: %w", err)
	}
	return nil
}

func (p *Provider) demo(symbol string, assetType core.AssetType, note string) core.Quote {
	return core.Quote{
		Symbol:        symbol,
		AssetType:     assetType,
		Price:         core.NewMoney(100),
		Change:        core.NewMoney(2.5),
		ChangePercent: core.NewMoney(2.56),
		Volume:        core.NewMoney(1000000),
		Currency:      "BRL",
		Source:        "demo",
		Note:          note,
		Timestamp:     p.now(),
	}
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
