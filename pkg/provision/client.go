package provision

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Remote provisioning calls are synchronous; a call that outlives this
// timeout counts as a failure of its stage.
const remoteCallTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: remoteCallTimeout}
}

// RemoteError is a non-200 reply from a provisioning service. Message
// holds the body's "message" field when one could be parsed, else "".
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote status %d", e.Status)
}

// decodeRemoteError turns a non-200 response into a RemoteError,
// tolerating unparseable bodies.
func decodeRemoteError(resp *http.Response) *RemoteError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &RemoteError{Status: resp.StatusCode, Message: body.Message}
}
