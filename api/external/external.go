/* external.go
 * Contains the client used to fetch data from The Blue Alliance API v3, and return the results to the higher level
 * functions. Requests are rate limited and every call takes a context
 */

package external

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.thebluealliance.com/api/v3"
	// recentEventLimit is how many of a team's events are offered when picking an event
	recentEventLimit = 3
	userAgent        = "CyberScout/1.0"
)

// ErrNoAPIKey is returned by single object requests when no TBA key is configured
var ErrNoAPIKey = errors.New("tba api key is not configured")

// Client is a rate limited TBA API v3 client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host, used by tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRateLimit sets the sustained requests per second and burst size
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a TBA client. An empty apiKey is allowed, list requests then return no results
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether requests will be authenticated
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// get fetches a path and decodes the JSON body into out.
// Preconditions: Receives the context, the path below the base url and a pointer to decode into
// Postconditions: Returns ErrNoAPIKey without a request when no key is set, or an error for a failed request,
// a non 200 status or a body that is not valid JSON
func (c *Client) get(ctx context.Context, path string, out any) error {
	if !c.HasKey() {
		return ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("X-TBA-Auth-Key", c.apiKey)
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept-Encoding", "gzip")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s failed with status code %d", path, response.StatusCode)
	}

	var body io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		reader, err := gzip.NewReader(response.Body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()
		body = reader
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// list fetches a JSON array. A missing key is logged and gives an empty result
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.get(ctx, path, &out); err != nil {
		if errors.Is(err, ErrNoAPIKey) {
			c.logger.Warn("TBA API key missing, returning no results", "path", path)
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Districts returns the districts for a season
func (c *Client) Districts(ctx context.Context, year int) ([]District, error) {
	return list[District](ctx, c, fmt.Sprintf("/districts/%d", year))
}

// DistrictEvents returns the events in a district, e.g. 2025ne
func (c *Client) DistrictEvents(ctx context.Context, districtKey string) ([]Event, error) {
	return list[Event](ctx, c, fmt.Sprintf("/district/%s/events", districtKey))
}

// TeamEvents returns a team's most recent events in a season, newest first
func (c *Client) TeamEvents(ctx context.Context, team, year int) ([]Event, error) {
	events, err := list[Event](ctx, c, fmt.Sprintf("/team/%s/events/%d", TeamKey(team), year))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return strings.Compare(b.StartDate, a.StartDate)
	})
	return events[:min(recentEventLimit, len(events))], nil
}

// EventMatches returns every match of an event
func (c *Client) EventMatches(ctx context.Context, eventKey string) ([]Match, error) {
	return list[Match](ctx, c, fmt.Sprintf("/event/%s/matches", eventKey))
}

// Event returns one event
func (c *Client) Event(ctx context.Context, eventKey string) (Event, error) {
	var event Event
	if err := c.get(ctx, fmt.Sprintf("/event/%s", eventKey), &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Match returns one match by key, e.g. 2025nhsal_qm12
func (c *Client) Match(ctx context.Context, matchKey string) (Match, error) {
	var match Match
	if err := c.get(ctx, fmt.Sprintf("/match/%s", matchKey), &match); err != nil {
		return Match{}, err
	}
	return match, nil
}
