// Package fetch retrieves remote image buffers with a bounded time budget,
// cooperative cancellation and incremental progress reporting. It is
// independent of the decoder: it produces the raw bytes that are then handed
// to nifti.Decode.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a transfer when Options.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// chunkSize is the read granularity used when progress is reported.
const chunkSize = 32 * 1024

// ProgressFunc receives (bytesReceived, totalBytes) after each chunk of a
// transfer whose total length is known. Successive calls report
// non-decreasing byte counts and end at bytesReceived == totalBytes.
type ProgressFunc func(received, total uint64)

// Options configures a single fetch. The zero value is usable.
type Options struct {
	// Timeout bounds the whole transfer, connection setup included.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// OnProgress, when non-nil, is invoked after each received chunk if
	// the response declares its total length. Transfers of unknown length
	// are consumed in one piece with no progress events.
	OnProgress ProgressFunc

	// Client overrides the HTTP client, mainly for tests.
	// Nil means http.DefaultClient.
	Client *http.Client
}

// Fetch retrieves the full byte buffer at the given URL. The caller's
// context and the internal transfer timer compose into a single effective
// cancellation: whichever fires first aborts the in-flight transfer, and the
// returned error records which one it was (ErrCancelled vs ErrTimedOut).
// Non-success responses and network failures surface as *TransportError.
// There is no retry logic; retry policy belongs to the caller.
func Fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The timer context is a child of the caller's context, so either
	// source aborts the transfer. Tagging the timer with ErrTimedOut as
	// its cause is what lets classify tell the two apart afterwards.
	tctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrTimedOut)
	defer cancel()

	req, err := http.NewRequestWithContext(tctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classify(tctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := readBody(resp, opts.OnProgress)
	if err != nil {
		return nil, classify(tctx, err)
	}
	return body, nil
}

// readBody consumes the response. With a known total length and a listener,
// the body is read chunk by chunk with a progress call after each one;
// otherwise it is consumed as a single unit.
func readBody(resp *http.Response, progress ProgressFunc) ([]byte, error) {
	acc := newAccumulator(resp.ContentLength)

	if progress == nil || !acc.known {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		acc.append(data)
		return acc.bytes(), nil
	}

	total := uint64(acc.total)
	chunk := make([]byte, chunkSize)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			acc.append(chunk[:n])
			progress(uint64(acc.received()), total)
		}
		if err == io.EOF {
			return acc.bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// classify maps a transfer failure to the cancellation source that caused
// it. An expired internal timer reports ErrTimedOut; any other context
// termination is the caller's signal and reports ErrCancelled; everything
// else is a transport failure. The sentinel wraps the underlying transport
// error, so errors.Is matching works while the URL and phase of the
// failure stay in the message.
func classify(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		if errors.Is(cause, ErrTimedOut) {
			return fmt.Errorf("%w: %v", ErrTimedOut, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}
	}
	return &TransportError{Message: err.Error()}
}
