// Package export forwards computed feature digests to the edge tier.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rpindulic/Quaggy/internal/features"
)

// ErrTransient indicates a delivery failure that may succeed on retry
// (endpoint down, non-2xx status).
var ErrTransient = errors.New("transient export error")

// Broadcaster POSTs feature digests to a configured HTTP endpoint as a JSON
// object. Values are serialized as strings, which is what the edge servers
// expect.
type Broadcaster struct {
	client   *resty.Client
	endpoint string
}

// NewBroadcaster creates a broadcaster for the given endpoint URL.
func NewBroadcaster(endpoint string) *Broadcaster {
	client := resty.New()
	client.SetTimeout(15 * time.Second)

	return &Broadcaster{
		client:   client,
		endpoint: endpoint,
	}
}

// Send delivers one item's digest. Empty digests are not sent.
func (b *Broadcaster) Send(ctx context.Context, digest features.Digest) error {
	if len(digest) == 0 {
		return nil
	}

	payload := make(map[string]string, len(digest))
	for key, val := range digest {
		payload[key] = strconv.FormatFloat(val, 'g', -1, 64)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(b.endpoint)
	if err != nil {
		return fmt.Errorf("%w: post digest: %v", ErrTransient, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: post digest: status %d", ErrTransient, resp.StatusCode())
	}
	return nil
}
