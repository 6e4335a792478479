// Package api provides the Upbit quotation REST client.
//
// REST endpoint:
//   - https://api.upbit.com/v1
//
// Quotation endpoints are public and need no credentials. They are rate
// limited per IP (10 requests/second for market endpoints); the client
// paces itself with a token bucket and retries 429 and 5xx responses.
package api
