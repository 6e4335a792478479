package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/upbit-ticker/internal/model"
)

// GetAllMarkets fetches the full market catalog.
func (c *Client) GetAllMarkets(ctx context.Context) ([]model.MarketDescriptor, error) {
	return c.GetAllMarketsWithOptions(ctx, GetMarketsOptions{})
}

// GetAllMarketsWithOptions fetches the full market catalog with the given options.
// The endpoint is not paginated; one call returns every listed market.
func (c *Client) GetAllMarketsWithOptions(ctx context.Context, opts GetMarketsOptions) ([]model.MarketDescriptor, error) {
	query := url.Values{}
	query.Set("isDetails", strconv.FormatBool(opts.IsDetails))

	var markets []model.MarketDescriptor
	if err := c.get(ctx, "/market/all", query, &markets); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return markets, nil
}
