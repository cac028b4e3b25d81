package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// WrappedSolMint is the mint used to quote native SOL in USD.
const WrappedSolMint = "So11111111111111111111111111111111111111112"

// Client fetches USD token prices from the Jupiter price API.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type priceResponse struct {
	Data map[string]*priceEntry `json:"data"`
}

type priceEntry struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

// USDPrice returns the current USD price of a mint. A missing or zero quote
// is ErrPriceUnavailable; transport and decode failures are
// ErrUpstreamUnavailable. Callers in the fee path must fail closed on either.
func (c *Client) USDPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	reqURL := fmt.Sprintf("%s/price/v2?ids=%s", c.apiURL, url.QueryEscape(mint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: failed to build price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: price request failed: %w: %w", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: failed to read price response: %w: %w", types.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf(
			"jupiter: price API returned status %d: %s: %w",
			resp.StatusCode, string(body), types.ErrUpstreamUnavailable,
		)
	}

	var parsed priceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: failed to decode price response: %w: %w", types.ErrUpstreamUnavailable, err)
	}

	entry, ok := parsed.Data[mint]
	if !ok || entry == nil || entry.Price == "" {
		return decimal.Zero, fmt.Errorf("jupiter: no price for mint %s: %w", mint, types.ErrPriceUnavailable)
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: malformed price %q for mint %s: %w", entry.Price, mint, types.ErrPriceUnavailable)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("jupiter: non-positive price for mint %s: %w", mint, types.ErrPriceUnavailable)
	}

	return price, nil
}
