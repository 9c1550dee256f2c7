// Package content fetches the external picture-of-the-day payload shown by
// the morning greeting.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIURL = "https://api.nasa.gov/planetary/apod"
	DemoAPIKey    = "DEMO_KEY"
)

var ErrMissingField = errors.New("content: missing field")

// Payload is one picture of the day.
type Payload struct {
	Title       string
	Explanation string
	ImageURL    string
}

type Source interface {
	Fetch(ctx context.Context) (Payload, error)
}

// APOD reads NASA's Astronomy Picture of the Day API.
type APOD struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewAPOD(endpoint, apiKey string, timeout time.Duration) *APOD {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultAPIURL
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = DemoAPIKey
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APOD{endpoint: endpoint, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

type apodResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	HDURL       string `json:"hdurl"`
	URL         string `json:"url"`
	MediaType   string `json:"media_type"`
}

func (a *APOD) requestURL() (string, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return "", fmt.Errorf("apod url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", a.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch performs a single request. It does not retry.
func (a *APOD) Fetch(ctx context.Context) (Payload, error) {
	reqURL, err := a.requestURL()
	if err != nil {
		return Payload{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Payload{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("apod request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Payload{}, fmt.Errorf("apod read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("apod: HTTP %d", resp.StatusCode)
	}
	return decode(body)
}

func decode(body []byte) (Payload, error) {
	var r apodResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Payload{}, fmt.Errorf("apod decode: %w", err)
	}
	img := r.HDURL
	if img == "" && r.MediaType == "image" {
		img = r.URL
	}
	switch {
	case r.Title == "":
		return Payload{}, fmt.Errorf("%w: title", ErrMissingField)
	case r.Explanation == "":
		return Payload{}, fmt.Errorf("%w: explanation", ErrMissingField)
	case img == "":
		return Payload{}, fmt.Errorf("%w: hdurl", ErrMissingField)
	}
	return Payload{Title: r.Title, Explanation: r.Explanation, ImageURL: img}, nil
}
