package provider

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	DefaultAPIVersion = "0.5"
	DefaultFormat     = "json"
)

// injectCredentials adds the API key and protocol parameters every endpoint
// expects, and tags the request with a fresh id for log correlation.
func (c *Client) injectCredentials(req *http.Request) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("v", c.version)
	q.Set("key", c.apiKey)
	q.Set("format", c.format)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("X-Request-ID", id.String())
	req.Header.Set("Accept", "application/json")

	return nil
}
