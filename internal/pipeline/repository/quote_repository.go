package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-stock-newsroom/internal/pipeline/config"
	"go-stock-newsroom/internal/pipeline/dto"
	"go-stock-newsroom/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// QuoteRepository defines the interface for the external quote provider.
type QuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type quoteRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	quoteCache     *cache.Cache
}

// NewQuoteRepository creates a client for the brapi-style quote API. A short
// in-process cache absorbs repeated lookups for the same symbol within one run.
func NewQuoteRepository(cfg *config.Config, log *logger.Logger) (QuoteRepository, error) {
	if cfg.Quote.BaseURL == "" {
		return nil, fmt.Errorf("quote provider base_url is required")
	}
	perMinute := cfg.Quote.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	cacheTTL := cfg.Quote.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &quoteRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Quote.Timeout,
		},
		requestLimiter: requestLimiter,
		quoteCache:     cache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

// GetQuote fetches a point-in-time quote for the symbol. Transport failures
// and non-2xx responses map to ErrSourceUnavailable; unparseable bodies map
// to ErrMalformedResponse. There is no retry here, the caller's next
// schedule tick is the retry.
func (r *quoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if cached, ok := r.quoteCache.Get(symbol); ok {
		quote := cached.(dto.Quote)
		return &quote, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	url := fmt.Sprintf("%s/api/quote/%s?token=%s", r.cfg.Quote.BaseURL, symbol, r.cfg.Quote.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Quote provider request failed", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("%w: %v", dto.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", dto.ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Quote provider returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("%w: status %d", dto.ErrSourceUnavailable, resp.StatusCode)
	}

	var apiResp dto.QuoteAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrMalformedResponse, err)
	}
	if len(apiResp.Results) == 0 {
		return nil, fmt.Errorf("%w: empty results for %s", dto.ErrMalformedResponse, symbol)
	}

	quote := apiResp.Results[0]
	quote.RawPayload = json.RawMessage(body)

	r.quoteCache.Set(symbol, quote, cache.DefaultExpiration)

	return &quote, nil
}
