package dlutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
)

func TestFetchBytesOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello media"))
	}))
	defer srv.Close()

	data, err := FetchBytes(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello media" {
		t.Errorf("unexpected body: %q", data)
	}
}

func TestFetchBytesAnnouncedTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "60000000")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := FetchBytes(context.Background(), srv.Client(), srv.URL)
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected TooLargeError, got %v", err)
	}
	if tooLarge.Size != 60000000 {
		t.Errorf("expected size 60000000, got %d", tooLarge.Size)
	}
}

// The announced length is untrustworthy: a chunked response with no
// Content-Length must still be rejected once the actual bytes exceed the
// ceiling.
func TestFetchBytesActualTooLarge(t *testing.T) {
	chunk := make([]byte, 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush() // force chunked encoding
		written := int64(0)
		for written <= tglimit.MaxFileSize {
			n, err := w.Write(chunk)
			if err != nil {
				return
			}
			written += int64(n)
		}
	}))
	defer srv.Close()

	_, err := FetchBytes(context.Background(), srv.Client(), srv.URL)
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected TooLargeError, got %v", err)
	}
}

func TestFetchBytesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchBytes(context.Background(), srv.Client(), srv.URL)
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	var tooLarge *TooLargeError
	if errors.As(err, &tooLarge) {
		t.Fatalf("a transport failure must not classify as too large: %v", err)
	}
	want := fmt.Sprintf("status code: %d", http.StatusNotFound)
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error %q does not mention %q", got, want)
	}
}
