package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"stockfolio/internal/quote"
)

// Name implements quote.Source.
func (c *Client) Name() string { return "yahoo" }

// Fetch retrieves quotes for the given symbols in a single batched
// request and reduces each record to the normalized quote shape.
// Non-success statuses come back as *quote.UpstreamError; transport and
// decode failures as plain errors for the caller to classify.
func (c *Client) Fetch(ctx context.Context, symbols []string) ([]quote.Quote, error) {
	var api apiResponse
	if err := c.get(ctx, symbols, &api); err != nil {
		return nil, err
	}
	if api.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("provider error: code=%q msg=%q", api.QuoteResponse.Error.Code, api.QuoteResponse.Error.Description)
	}

	out := make([]quote.Quote, 0, len(api.QuoteResponse.Result))
	for _, r := range api.QuoteResponse.Result {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if sym == "" {
			continue
		}
		// Display name preference: short name, long name, then the
		// symbol itself.
		name := strings.TrimSpace(r.ShortName)
		if name == "" {
			name = strings.TrimSpace(r.LongName)
		}
		if name == "" {
			name = sym
		}
		var currency *string
		if cur := strings.TrimSpace(r.Currency); cur != "" {
			currency = &cur
		}
		out = append(out, quote.Quote{
			Symbol:        sym,
			Name:          name,
			Price:         r.RegularMarketPrice,
			PreviousClose: r.RegularMarketPreviousClose,
			Currency:      currency,
		})
	}
	return out, nil
}

// FetchRaw returns the raw upstream payload for the given symbols,
// useful for inspecting schema drift from the command line.
func (c *Client) FetchRaw(ctx context.Context, symbols []string) ([]byte, error) {
	var raw json.RawMessage
	if err := c.get(ctx, symbols, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, symbols []string, into any) error {
	query := maps.Clone(c.query)
	if query == nil {
		query = url.Values{}
	}
	query.Set("symbols", strings.Join(symbols, ","))

	endpoint := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 2<<10))
		return &quote.UpstreamError{Status: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding quote response: %w", err)
	}
	return nil
}

type apiResponse struct {
	QuoteResponse struct {
		Result []apiQuote `json:"result"`
		Error  *apiError  `json:"error"`
	} `json:"quoteResponse"`
}

type apiQuote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	Currency                   string   `json:"currency"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
