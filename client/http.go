package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// responseHandler consumes a successful (2xx) response
type responseHandler func(ctx context.Context, resp *http.Response) error

// do performs a single bounded request. The timeout covers connecting,
// sending, and reading the body inside handle. There are no retries.
func (c *Client) do(ctx context.Context, method, path string, payload any, handle responseHandler) (err error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)
	requestID := uuid.NewString()
	start := time.Now()
	statusCode := 0

	defer func() {
		elapsed := time.Since(start)
		if c.observer != nil {
			c.observer.ObserveRequest(path, statusCode, elapsed, err)
		}
		c.logger.Debug("request finished",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status", statusCode),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	}()

	var body io.Reader
	if payload != nil {
		jsonData, mErr := json.Marshal(payload)
		if mErr != nil {
			return &Error{Op: path, Message: fmt.Sprintf("failed to encode request: %v", mErr), Err: mErr}
		}
		body = bytes.NewReader(jsonData)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, rErr := http.NewRequestWithContext(reqCtx, method, url, body)
	if rErr != nil {
		return &Error{Op: path, Message: rErr.Error(), Err: rErr}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, dErr := c.httpClient.Do(req)
	if dErr != nil {
		if c.timedOut(ctx, reqCtx) {
			return c.timeoutError(path, dErr)
		}
		// Transport errors are surfaced as reported.
		return &Error{Op: path, Message: dErr.Error(), Err: dErr}
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp)
	}

	if hErr := handle(reqCtx, resp); hErr != nil {
		if c.timedOut(ctx, reqCtx) {
			return c.timeoutError(path, hErr)
		}
		var ce *Error
		if errors.As(hErr, &ce) {
			ce.Op = path
			return ce
		}
		return &Error{Op: path, Message: fmt.Sprintf("failed to decode response: %v", hErr), Err: hErr}
	}
	return nil
}

// timedOut reports whether reqCtx expired on its own bound rather than
// because the caller's context ended.
func (c *Client) timedOut(parent, reqCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded)
}

func (c *Client) timeoutError(path string, cause error) *Error {
	return &Error{
		Op:      path,
		Message: fmt.Sprintf("request timed out after %s", formatSeconds(c.timeout)),
		Timeout: true,
		Err:     errors.Join(context.DeadlineExceeded, cause),
	}
}

// formatSeconds renders d in whole or fractional seconds, so 60s stays
// "60s" rather than "1m0s"
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

// doJSONRequest performs a JSON request and decodes the JSON response into
// result. If result is nil, the response body is not decoded.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result any) error {
	return c.do(ctx, method, path, payload, func(_ context.Context, resp *http.Response) error {
		if result == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(result)
	})
}

// doBinaryRequest posts a JSON payload and returns the raw response body
// together with its declared content type.
func (c *Client) doBinaryRequest(ctx context.Context, path string, payload any) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := c.do(ctx, http.MethodPost, path, payload, func(_ context.Context, resp *http.Response) error {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		data = b
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
