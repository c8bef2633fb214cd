package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an error naming the upstream. 404 maps to ErrNotFound and
// 503 to ErrServiceUnavail; anything else keeps the status and body text.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		path := ""
		if resp.Request != nil {
			path = resp.Request.URL.Path
		}
		return apperrors.NotFound(upstream, path)
	case http.StatusServiceUnavailable:
		return apperrors.Unavailable(upstream, fmt.Errorf("status 503: %s", body))
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(body))
	}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
