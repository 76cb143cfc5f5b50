// Package dlutil downloads remote resources into memory with a hard size
// ceiling enforced both before and after transfer.
package dlutil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
)

// TooLargeError reports a resource whose announced or actual size exceeds
// the single-file ceiling. It is an expected, user-caused condition and is
// never escalated to operators.
type TooLargeError struct {
	Size int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s (limit: %s)",
		humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(tglimit.MaxFileSize)))
}

// FetchBytes downloads url fully into memory. The announced Content-Length
// is checked before buffering to avoid transferring clearly-oversized
// content, and the actual byte count is re-checked after completion because
// the announced length is untrustworthy. A single attempt, no retries.
func FetchBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", url, resp.StatusCode)
	}
	if resp.ContentLength > tglimit.MaxFileSize {
		return nil, &TooLargeError{Size: resp.ContentLength}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, tglimit.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > tglimit.MaxFileSize {
		return nil, &TooLargeError{Size: int64(len(data))}
	}
	return data, nil
}
