package restapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
)

// maxErrorBody bounds how much of an error response is kept in the message.
const maxErrorBody = 4 * 1024

// checkStatus converts a non-success response into a remote error whose
// message carries the status line and the (truncated) response body.
func checkStatus(resp *http.Response, op, repo, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(raw))

	var message string
	if strings.HasPrefix(resp.Header.Get("Content-Type"), mimeJSON) {
		message = fmt.Sprintf("HTTP %d %s: with this JSON info: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), body)
	} else {
		message = fmt.Sprintf("HTTP %d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), body)
	}
	return errors.NewStatusError(op, repo, path, resp.StatusCode, message)
}
