package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CurrencyClient is a minimal client for the currency service.
type CurrencyClient struct {
	BaseURL string
	httpDo  *http.Client
}

func NewCurrencyClient(baseURL string) *CurrencyClient {
	return &CurrencyClient{BaseURL: baseURL, httpDo: newHTTPClient()}
}

// Wallet identifies a wallet created by the currency service.
type Wallet struct {
	ID  string `json:"uuid"`
	Key string `json:"key"`
}

// CreateWallet creates a wallet owned by the session's user.
func (c *CurrencyClient) CreateWallet(ctx context.Context, token string) (Wallet, error) {
	endpoint := fmt.Sprintf("%s/wallet", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return Wallet{}, err
	}
	req.Header.Set("Token", token)

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return Wallet{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Wallet{}, decodeRemoteError(resp)
	}

	var out Wallet
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Wallet{}, err
	}
	if out.ID == "" || out.Key == "" {
		return Wallet{}, errors.New("currency service returned no wallet credentials")
	}
	return out, nil
}
