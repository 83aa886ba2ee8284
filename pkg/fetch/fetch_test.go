package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestFetchWithProgress verifies the chunked path: data integrity, monotonic
// progress and termination at the declared total.
func TestFetchWithProgress(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB, 0xCD}, 100*1024) // ~200 KiB, several chunks

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body is larger than the server's write buffer, so the
		// length must be declared explicitly to avoid chunked encoding.
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	type call struct{ received, total uint64 }
	var calls []call

	data, err := Fetch(context.Background(), server.URL, Options{
		OnProgress: func(received, total uint64) {
			calls = append(calls, call{received, total})
		},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("Fetched %d bytes, expected %d identical bytes", len(data), len(payload))
	}

	if len(calls) == 0 {
		t.Fatal("Expected progress callbacks for a known-length transfer")
	}
	var prev uint64
	for i, c := range calls {
		if c.total != uint64(len(payload)) {
			t.Errorf("Call %d: expected total %d, got %d", i, len(payload), c.total)
		}
		if c.received < prev {
			t.Errorf("Call %d: received went backwards, %d < %d", i, c.received, prev)
		}
		prev = c.received
	}
	if final := calls[len(calls)-1].received; final != uint64(len(payload)) {
		t.Errorf("Expected final progress %d, got %d", len(payload), final)
	}
}

// TestFetchUnknownLength verifies that a chunked response with no declared
// length is consumed in one piece with no progress events.
func TestFetchUnknownLength(t *testing.T) {
	payload := []byte("chunked response body")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// Flushing before the body is complete forces chunked encoding,
		// so the client sees ContentLength == -1.
		w.Write(payload[:5])
		flusher.Flush()
		w.Write(payload[5:])
	}))
	defer server.Close()

	progressCalls := 0
	data, err := Fetch(context.Background(), server.URL, Options{
		OnProgress: func(received, total uint64) { progressCalls++ },
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Expected %q, got %q", payload, data)
	}
	if progressCalls != 0 {
		t.Errorf("Expected no progress events for unknown length, got %d", progressCalls)
	}
}

// TestFetchTimedOut verifies the internal timer surfaces ErrTimedOut.
func TestFetchTimedOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done() // hold the response until the client gives up
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL, Options{Timeout: 50 * time.Millisecond})
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("Expected ErrTimedOut, got %v", err)
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatal("Timeout must not be reported as cancellation")
	}
	if !strings.Contains(err.Error(), server.URL) {
		t.Errorf("Expected the timeout error to keep the transport detail, got %q", err)
	}
}

// TestFetchCancelled verifies an external cancellation surfaces ErrCancelled,
// distinguishable from a timeout on the same stalled transfer.
func TestFetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Fetch(ctx, server.URL, Options{}) // default 60s timeout never fires
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Expected ErrCancelled, got %v", err)
	}
	if errors.Is(err, ErrTimedOut) {
		t.Fatal("Cancellation must not be reported as timeout")
	}
	if !strings.Contains(err.Error(), server.URL) {
		t.Errorf("Expected the cancellation error to keep the transport detail, got %q", err)
	}
}

// TestFetchCancelledMidBody verifies cancellation during body streaming, not
// just before the response headers.
func TestFetchCancelledMidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		w.Write(make([]byte, 1000))
		w.(http.Flusher).Flush()
		<-r.Context().Done() // stall mid-body
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := Fetch(ctx, server.URL, Options{OnProgress: func(uint64, uint64) {}})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Expected ErrCancelled mid-body, got %v", err)
	}
}

// TestFetchTransportError verifies non-2xx responses surface as
// TransportError with the status code.
func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL, Options{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", te.StatusCode)
	}
}

// TestFetchConnectionFailure verifies failures below HTTP surface as
// TransportError with no status code.
func TestFetchConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	_, err := Fetch(context.Background(), server.URL, Options{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %v", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("Expected zero status code for dial failure, got %d", te.StatusCode)
	}
}

// TestAccumulatorKnownLength verifies the preallocated variant never grows
// its backing array.
func TestAccumulatorKnownLength(t *testing.T) {
	acc := newAccumulator(100)
	if !acc.known || acc.total != 100 {
		t.Fatalf("Expected known accumulator with total 100, got %+v", acc)
	}
	if cap(acc.buf) != 100 {
		t.Errorf("Expected capacity 100, got %d", cap(acc.buf))
	}

	chunk := make([]byte, 25)
	for i := 0; i < 4; i++ {
		acc.append(chunk)
	}
	if acc.received() != 100 {
		t.Errorf("Expected 100 bytes received, got %d", acc.received())
	}
	if cap(acc.buf) != 100 {
		t.Errorf("Backing array grew to %d despite known length", cap(acc.buf))
	}
}

// TestAccumulatorUnknownLength verifies the growing variant.
func TestAccumulatorUnknownLength(t *testing.T) {
	acc := newAccumulator(-1)
	if acc.known {
		t.Fatal("Expected unknown-length accumulator")
	}
	acc.append([]byte("abc"))
	acc.append([]byte("def"))
	if string(acc.bytes()) != "abcdef" {
		t.Errorf("Expected abcdef, got %q", acc.bytes())
	}
}
