// ==============================
// File: internal/jupiter/types.go
// ==============================
package jupiter

// PriceResponse is the price API payload: a map keyed by input mint.
type PriceResponse struct {
	Data      map[string]PriceData `json:"data"`
	TimeTaken float64              `json:"timeTaken,omitempty"`
}

type PriceData struct {
	ID            string  `json:"id"`
	MintSymbol    string  `json:"mintSymbol,omitempty"`
	VsToken       string  `json:"vsToken,omitempty"`
	VsTokenSymbol string  `json:"vsTokenSymbol,omitempty"`
	Price         float64 `json:"price"`
}

// QuoteResponse is the quote API payload, passed back verbatim when
// requesting the swap transaction.
type QuoteResponse struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
	ContextSlot          int64       `json:"contextSlot,omitempty"`
	TimeTaken            float64     `json:"timeTaken,omitempty"`
}

// RoutePlan describes a single step in the swap route.
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapRequest is the body posted to the swap endpoint.
type SwapRequest struct {
	QuoteResponse    *QuoteResponse `json:"quoteResponse"`
	UserPublicKey    string         `json:"userPublicKey"`
	WrapAndUnwrapSol bool           `json:"wrapAndUnwrapSol"`
}

// SwapResponse carries the base64-encoded transaction built by the router.
type SwapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight int64  `json:"lastValidBlockHeight"`
}
