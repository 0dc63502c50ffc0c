package provider

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnexpectedShape is returned when a response decodes but its data field
// is not the list the endpoint is documented to return.
var ErrUnexpectedShape = errors.New("unexpected response shape")

type StatusError struct {
	URL, Status string
	StatusCode  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.URL, e.Status)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return &StatusError{
		URL:        resp.Request.URL.Redacted(),
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
	}
}
