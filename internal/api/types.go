package api

// errorBody is the JSON shape of Upbit error responses.
type errorBody struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetMarketsOptions configures a GetAllMarkets request.
type GetMarketsOptions struct {
	IsDetails bool // Include market_warning in each descriptor
}
