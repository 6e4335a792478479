package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/upbit-ticker/internal/model"
)

// ErrEmptyCatalog is returned when the catalog has no usable markets.
var ErrEmptyCatalog = errors.New("market catalog is empty")

// CatalogTicket is the fixed ticket of catalog-built subscriptions.
const CatalogTicket = "550e8400-e29b-41d4-a716-446655440000"

// Source lists the exchange's markets. *api.Client satisfies it.
type Source interface {
	GetAllMarkets(ctx context.Context) ([]model.MarketDescriptor, error)
}

// Fetcher retrieves the market catalog and turns it into subscriptions.
type Fetcher struct {
	source      Source
	logger      *slog.Logger
	ticket      string
	channelType string
	quote       string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTicket overrides the subscription ticket.
func WithTicket(ticket string) FetcherOption {
	return func(f *Fetcher) {
		f.ticket = ticket
	}
}

// WithChannelType overrides the subscription channel type.
func WithChannelType(channelType string) FetcherOption {
	return func(f *Fetcher) {
		f.channelType = channelType
	}
}

// WithQuote limits catalog subscriptions to markets quoted in quote.
func WithQuote(quote string) FetcherOption {
	return func(f *Fetcher) {
		f.quote = quote
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a catalog fetcher backed by source.
func NewFetcher(source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:      source,
		logger:      slog.Default(),
		ticket:      CatalogTicket,
		channelType: model.DefaultChannelType,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchCatalog performs one catalog retrieval.
func (f *Fetcher) FetchCatalog(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	markets, err := f.source.GetAllMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	catalog := NewCatalog(markets)
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	f.logger.Info("market catalog fetched",
		"markets", catalog.Len(),
		"duration", time.Since(start),
	)

	return catalog, nil
}

// FetchCodes returns the codes of every market quoted in quote ("" for all).
func (f *Fetcher) FetchCodes(ctx context.Context, quote string) ([]string, error) {
	catalog, err := f.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	codes := catalog.Codes(quote)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no markets quoted in %q: %w", quote, ErrEmptyCatalog)
	}
	return codes, nil
}

// FetchSubscriptionRequest builds a subscription covering every market in the
// catalog, or every market in the WithQuote currency.
func (f *Fetcher) FetchSubscriptionRequest(ctx context.Context) (model.SubscriptionRequest, error) {
	codes, err := f.FetchCodes(ctx, f.quote)
	if err != nil {
		return model.SubscriptionRequest{}, err
	}

	return model.SubscriptionRequest{
		Ticket: f.ticket,
		Type:   f.channelType,
		Codes:  codes,
	}, nil
}

// FetchSubscription returns the serialized all-markets subscription text.
func (f *Fetcher) FetchSubscription(ctx context.Context) (string, error) {
	req, err := f.FetchSubscriptionRequest(ctx)
	if err != nil {
		return "", err
	}

	data, err := req.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode subscription: %w", err)
	}
	return string(data), nil
}
