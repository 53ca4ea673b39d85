package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// maxResultBytes bounds a classifier response body.
const maxResultBytes = 1 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Classifier turns a validated intake into a result.
type Classifier interface {
	Classify(ctx context.Context, in intake.Input) (*results.Result, error)
}

// ClassifierClient posts the flat intake JSON to the remote classifier.
type ClassifierClient struct {
	url    string
	apiKey string
	client HTTPClient
}

// NewClassifierClient returns a client for url. A nil client gets an
// *http.Client bounded by timeout.
func NewClassifierClient(url, apiKey string, timeout time.Duration, client HTTPClient) *ClassifierClient {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &ClassifierClient{url: url, apiKey: strings.TrimSpace(apiKey), client: client}
}

func (c *ClassifierClient) Classify(ctx context.Context, in intake.Input) (*results.Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes))
	if err != nil {
		return nil, NewTransportError(err)
	}
	if resp.StatusCode >= 300 {
		return nil, NewTransportError(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
	r, err := results.Decode(data)
	if err != nil {
		if errors.Is(err, results.ErrMalformed) {
			return nil, NewMalformedResultError(err)
		}
		return nil, NewTransportError(err)
	}
	return r, nil
}

var _ Classifier = (*ClassifierClient)(nil)
