// ==============================
// File: internal/jupiter/client.go
// ==============================

// Package jupiter is a client for the Jupiter aggregator: price queries,
// quotes and swap transaction construction, plus a Swapper that signs and
// submits the returned transaction.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultQuoteAPIURL = "https://quote-api.jup.ag/v6"
	DefaultPriceAPIURL = "https://price.jup.ag/v4"
)

type Client struct {
	http     *http.Client
	quoteURL string
	priceURL string
}

type ClientOption func(*Client)

// WithEndpoints overrides the API base URLs, used by tests.
func WithEndpoints(quoteURL, priceURL string) ClientOption {
	return func(c *Client) {
		c.quoteURL = strings.TrimRight(quoteURL, "/")
		c.priceURL = strings.TrimRight(priceURL, "/")
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		quoteURL: DefaultQuoteAPIURL,
		priceURL: DefaultPriceAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PriceQuery returns the market price of inputMint denominated in outputMint.
// The response map is keyed by input mint.
func (c *Client) PriceQuery(ctx context.Context, inputMint, outputMint string) (*PriceResponse, error) {
	q := url.Values{}
	q.Set("ids", inputMint)
	q.Set("vsToken", outputMint)

	var out PriceResponse
	if err := c.getJSON(ctx, c.priceURL+"/price?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("price query failed: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("price query returned no data for %s", inputMint)
	}
	return &out, nil
}

// Price is a convenience over PriceQuery that unwraps the single pair entry.
func (c *Client) Price(ctx context.Context, inputMint, outputMint string) (float64, error) {
	resp, err := c.PriceQuery(ctx, inputMint, outputMint)
	if err != nil {
		return 0, err
	}
	for _, data := range resp.Data {
		return data.Price, nil
	}
	return 0, fmt.Errorf("price query returned no data for %s", inputMint)
}

// NewQuote requests a swap quote for amount native units of inputMint.
func (c *Client) NewQuote(ctx context.Context, inputMint, outputMint string, amount uint64, excludeDexes []string) (*QuoteResponse, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(amount, 10))
	if len(excludeDexes) > 0 {
		q.Set("excludeDexes", strings.Join(excludeDexes, ","))
	}

	var out QuoteResponse
	if err := c.getJSON(ctx, c.quoteURL+"/quote?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	return &out, nil
}

// NewSwap asks the router to build the swap transaction for a quote.
func (c *Client) NewSwap(ctx context.Context, quote *QuoteResponse, owner string, wrapUnwrapSol bool) (*SwapResponse, error) {
	body, err := json.Marshal(SwapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    owner,
		WrapAndUnwrapSol: wrapUnwrapSol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.quoteURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out SwapResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, fmt.Errorf("swap request failed: %w", err)
	}
	if out.SwapTransaction == "" {
		return nil, fmt.Errorf("swap response missing transaction")
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
