// Package catwalk is a client for the catwalk pairwise SNP distance service.
package catwalk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is kept in a
	// StatusError.
	maxErrorBody = 512
)

// Options configure a Client. Zero values take the package defaults.
type Options struct {
	// Timeout applies to each HTTP request. Ignored when HTTPClient is set.
	Timeout    time.Duration
	Retry      RetryPolicy
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client talks to a catwalk server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	log        *zap.Logger
}

// NewClient returns a Client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		retry:      opts.Retry.withDefaults(),
		log:        opts.Logger,
	}
}

// ListSamples returns the names of every sample the service holds.
func (c *Client) ListSamples(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := c.call(ctx, http.MethodGet, "/list_samples", nil, &names); err != nil {
		return nil, err
	}

	return names, nil
}

// Neighbours returns the samples within cutoff SNPs of name.
func (c *Client) Neighbours(ctx context.Context, name string, cutoff int) ([]Neighbor, error) {
	path := fmt.Sprintf("/neighbours/%s/%d", url.PathEscape(name), cutoff)

	var rows [][]json.RawMessage
	if err := c.call(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]Neighbor, 0, len(rows))
	for i, row := range rows {
		n, err := parseNeighbor(row)
		if err != nil {
			return nil, fmt.Errorf("catwalk: GET %s: row %d: %w", path, i, err)
		}
		out = append(out, n)
	}

	return out, nil
}

// PairwiseDistances returns the distances between the named samples. The
// service only reports pairs it considers related, so the result is usually
// sparser than the full matrix.
func (c *Client) PairwiseDistances(ctx context.Context, names []string) ([]PairwiseDistance, error) {
	if names == nil {
		names = []string{}
	}

	var rows [][]json.RawMessage
	if err := c.call(ctx, http.MethodPost, "/get_pairwise_distances", names, &rows); err != nil {
		return nil, err
	}

	out := make([]PairwiseDistance, 0, len(rows))
	for i, row := range rows {
		p, err := parsePairwiseDistance(row)
		if err != nil {
			return nil, fmt.Errorf("catwalk: POST /get_pairwise_distances: row %d: %w", i, err)
		}
		out = append(out, p)
	}

	return out, nil
}

// LoadSamplesFromFile asks the service to load every sample of an mfsl file.
// The path is resolved by the service, not locally.
func (c *Client) LoadSamplesFromFile(ctx context.Context, path string) error {
	body := struct {
		Filepath string `json:"filepath"`
	}{path}

	return c.call(ctx, http.MethodPost, "/add_samples_from_mfsl", body, nil)
}

// AddSample adds one sample. With keep set the service retains it in memory.
// Adding a sample that already exists is not an error.
func (c *Client) AddSample(ctx context.Context, name, sequence string, keep bool) error {
	body := struct {
		Name     string `json:"name"`
		Sequence string `json:"sequence"`
		Keep     bool   `json:"keep"`
	}{name, sequence, keep}

	return c.call(ctx, http.MethodPost, "/add_sample", body, nil)
}

func (c *Client) RemoveSample(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodGet, "/remove_sample/"+url.PathEscape(name), nil, nil)
}

// call performs one JSON request under the retry policy. Transport failures
// and temporary statuses are retried. Other statuses and undecodable bodies
// are returned at once.
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("catwalk: %s %s: encoding request: %w", method, path, err)
		}
	}

	return c.retry.do(ctx, c.log, method+" "+path, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       truncate(strings.TrimSpace(string(data)), maxErrorBody),
			}
			if statusErr.Temporary() {
				return statusErr
			}
			return permanent(statusErr)
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return permanent(fmt.Errorf("catwalk: %s %s: decoding response: %w", method, path, err))
		}

		return nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
