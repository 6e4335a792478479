// Package market implements the Market Catalog Fetcher.
//
// The fetcher:
//   - Retrieves the full symbol catalog from GET /v1/market/all
//   - Indexes descriptors by market code and quote currency
//   - Builds the all-markets ticker subscription text
//
// The live watch path only uses it when subscription.all_markets is set;
// otherwise it is reachable through the "markets" command.
package market
