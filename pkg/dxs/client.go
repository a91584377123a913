package dxs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT = 60 * time.Second

	REASON_TIMEOUT            = "timeout"
	REASON_CONNECTION_REFUSED = "connection refused"
	REASON_CONNECTION_FAILED  = "connection failed"
	REASON_EMPTY_BODY         = "empty body"
)

// EntriesReader reads the current values of a set of dxs entries.
type EntriesReader interface {
	ReadEntries(ctx context.Context, ids IdSet) (Envelope, error)
}

type NetworkError struct {
	URL    string
	Reason string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dxs request %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("dxs request %s: %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type DxsInstrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

type Client struct {
	baseUrl    string
	timeout    time.Duration
	http       *http.Client
	instrument []DxsInstrument
	logger     *zap.Logger
}

func CreateDxsClient(baseUrl string, timeout time.Duration, logger *zap.Logger, instrument []DxsInstrument) (*Client, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing inverter host")
	}
	if timeout <= 0 {
		timeout = DEFAULT_READ_TIMEOUT
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		timeout:    timeout,
		http:       &http.Client{Timeout: timeout},
		instrument: instrument,
		logger:     logger.With(zap.String("component", "dxs")),
	}, nil
}

// ReadEntries requests the given ids and parses the response.
func (c *Client) ReadEntries(ctx context.Context, ids IdSet) (Envelope, error) {
	body, err := c.Fetch(ctx, BuildQuery(ids))
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Fetch issues one GET against the dxs endpoint and returns the raw body.
// An empty body is reported as a NetworkError.
func (c *Client) Fetch(ctx context.Context, query string) (string, error) {
	defer RecordTimer("Fetch", c.instrument)()

	reqUrl := c.baseUrl + DXS_ENDPOINT + "?" + query
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return "", &NetworkError{URL: reqUrl, Reason: "invalid request", Err: err}
	}
	c.logger.Debug("dxs fetch", zap.String("url", reqUrl))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", networkError(reqUrl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &NetworkError{URL: reqUrl, Reason: fmt.Sprintf("http status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(reqUrl, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", &NetworkError{URL: reqUrl, Reason: REASON_EMPTY_BODY}
	}
	return string(body), nil
}

func networkError(reqUrl string, err error) *NetworkError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &NetworkError{URL: reqUrl, Reason: REASON_TIMEOUT, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &NetworkError{URL: reqUrl, Reason: REASON_CONNECTION_REFUSED, Err: err}
	default:
		return &NetworkError{URL: reqUrl, Reason: REASON_CONNECTION_FAILED, Err: err}
	}
}

// FailureReason maps a transport or parser error to a short status reason.
func FailureReason(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Reason
	}
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return "malformed response"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return REASON_TIMEOUT
	}
	return err.Error()
}

func RecordTimer(name string, instrument []DxsInstrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}
