package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DeviceClient is a minimal client for the device service.
type DeviceClient struct {
	BaseURL string
	httpDo  *http.Client
}

func NewDeviceClient(baseURL string) *DeviceClient {
	return &DeviceClient{BaseURL: baseURL, httpDo: newHTTPClient()}
}

type deviceResponse struct {
	UUID string `json:"uuid"`
}

type fileWriteRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// CreatePrivateDevice creates a private device owned by the session's
// user and returns its identifier.
func (c *DeviceClient) CreatePrivateDevice(ctx context.Context, token string) (string, error) {
	endpoint := fmt.Sprintf("%s/device/private", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Token", token)

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", decodeRemoteError(resp)
	}

	var out deviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.UUID == "" {
		return "", errors.New("device service returned no uuid")
	}
	return out.UUID, nil
}

// WriteFile stores a file on a previously created device.
func (c *DeviceClient) WriteFile(ctx context.Context, token, deviceID, filename, content string) error {
	data, err := json.Marshal(fileWriteRequest{Filename: filename, Content: content})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/file/%s", c.BaseURL, deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeRemoteError(resp)
	}
	return nil
}
