package reward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

var _ domain.RewardClient = (*HTTPClient)(nil)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSecond and Burst throttle outgoing claims. Zero disables throttling.
	RatePerSecond float64
	Burst         int
}

// HTTPClient claims rewards on the remote API:
// POST {base}/api/v1/{feature}/{itemID}/complete -> {"pointsAwarded": n}
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

type completeResponse struct {
	PointsAwarded *int `json:"pointsAwarded"`
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("reward client: invalid base url %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// endpoint escapes every segment, so an item id always stays one path segment.
func (c *HTTPClient) endpoint(feature domain.Feature, itemID string) string {
	segments := []string{"api", "v1", feature.String(), itemID, "complete"}

	u := *c.baseURL
	raw := strings.TrimRight(u.EscapedPath(), "/")
	path := strings.TrimRight(u.Path, "/")
	for _, seg := range segments {
		raw += "/" + url.PathEscape(seg)
		path += "/" + seg
	}
	u.Path = path
	u.RawPath = raw
	return u.String()
}

func (c *HTTPClient) CompleteItem(ctx context.Context, feature domain.Feature, itemID, token string) (*domain.Reward, error) {
	if err := domain.ValidateItemID(itemID); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: throttled: %v", domain.ErrRewardFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(feature, itemID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrRewardFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRewardFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrRewardFailed, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: %w", domain.ErrRewardFailed, domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: remote returned %d: %s", domain.ErrRewardFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload completeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrRewardFailed, err)
	}
	if payload.PointsAwarded == nil {
		return nil, fmt.Errorf("%w: response without pointsAwarded", domain.ErrRewardFailed)
	}

	return &domain.Reward{
		ItemID:        itemID,
		Feature:       feature,
		PointsAwarded: *payload.PointsAwarded,
	}, nil
}
