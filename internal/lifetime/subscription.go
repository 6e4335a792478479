package lifetime

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rickgao/upbit-ticker/internal/market"
	"github.com/rickgao/upbit-ticker/internal/model"
)

// AutoTicket asks for a freshly generated ticket per run.
const AutoTicket = "auto"

// Ticket resolves a configured ticket, generating a UUID for AutoTicket.
func Ticket(configured string) string {
	switch configured {
	case "":
		return model.DefaultTicket
	case AutoTicket:
		return uuid.NewString()
	default:
		return configured
	}
}

// Resolver produces the subscription a run streams.
type Resolver interface {
	Resolve(ctx context.Context) (model.SubscriptionRequest, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (model.SubscriptionRequest, error)

// Resolve calls fn(ctx).
func (fn ResolverFunc) Resolve(ctx context.Context) (model.SubscriptionRequest, error) {
	return fn(ctx)
}

// Static always resolves to req.
func Static(req model.SubscriptionRequest) Resolver {
	return ResolverFunc(func(context.Context) (model.SubscriptionRequest, error) {
		return req, nil
	})
}

// AllMarkets resolves to template with its codes replaced by every catalog
// market quoted in quote ("" for all).
func AllMarkets(f *market.Fetcher, quote string, template model.SubscriptionRequest) Resolver {
	return ResolverFunc(func(ctx context.Context) (model.SubscriptionRequest, error) {
		codes, err := f.FetchCodes(ctx, quote)
		if err != nil {
			return model.SubscriptionRequest{}, fmt.Errorf("resolve all markets: %w", err)
		}
		req := template
		req.Codes = codes
		return req, nil
	})
}
