package market

import (
	"strings"

	"github.com/rickgao/upbit-ticker/internal/model"
)

// Catalog is an immutable, code-indexed view of the market list.
type Catalog struct {
	markets []model.MarketDescriptor
	byCode  map[string]int
}

// NewCatalog indexes the given descriptors. Later duplicates of a code are dropped.
func NewCatalog(markets []model.MarketDescriptor) *Catalog {
	c := &Catalog{
		markets: make([]model.MarketDescriptor, 0, len(markets)),
		byCode:  make(map[string]int, len(markets)),
	}
	for _, m := range markets {
		if m.Market == "" {
			continue
		}
		if _, dup := c.byCode[m.Market]; dup {
			continue
		}
		c.byCode[m.Market] = len(c.markets)
		c.markets = append(c.markets, m)
	}
	return c
}

// Len returns the number of markets.
func (c *Catalog) Len() int {
	return len(c.markets)
}

// Markets returns the descriptors in catalog order.
func (c *Catalog) Markets() []model.MarketDescriptor {
	out := make([]model.MarketDescriptor, len(c.markets))
	copy(out, c.markets)
	return out
}

// Get returns a market by code.
func (c *Catalog) Get(code string) (model.MarketDescriptor, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return model.MarketDescriptor{}, false
	}
	return c.markets[i], true
}

// Codes returns market codes in catalog order. An empty quote matches all markets;
// otherwise only markets quoted in that currency (case-insensitive) are returned.
func (c *Catalog) Codes(quote string) []string {
	codes := make([]string, 0, len(c.markets))
	for _, m := range c.markets {
		if quote != "" && !strings.EqualFold(m.Quote(), quote) {
			continue
		}
		codes = append(codes, m.Market)
	}
	return codes
}
