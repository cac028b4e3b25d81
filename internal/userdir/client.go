package userdir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// Directory resolves an authenticated caller to their sender wallet address.
type Directory interface {
	WalletAddress(ctx context.Context, authToken string) (string, error)
}

// Client talks to the user-directory service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type userResponse struct {
	WalletAddress string `json:"walletAddress"`
}

func (c *Client) WalletAddress(ctx context.Context, authToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/users/me", nil)
	if err != nil {
		return "", fmt.Errorf("userdir: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("userdir: request failed: %w: %w", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("userdir: failed to read response: %w: %w", types.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound:
		return "", &types.ValidationError{Field: "caller", Reason: "unknown or unauthenticated user"}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf(
			"userdir: unexpected status %d: %s: %w",
			resp.StatusCode, string(body), types.ErrUpstreamUnavailable,
		)
	}

	var parsed userResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("userdir: failed to decode response: %w: %w", types.ErrUpstreamUnavailable, err)
	}

	if parsed.WalletAddress == "" {
		return "", &types.ValidationError{Field: "caller", Reason: "user has no linked wallet"}
	}

	return parsed.WalletAddress, nil
}
