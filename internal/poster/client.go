// Package poster provides a client for the Poster POS API.
package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/cohort/internal/errors"
	"github.com/lepinkainen/cohort/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://joinposter.com/api/"
	defaultPerPage       = 100
	defaultRatePerSecond = 5
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a Poster API client. It performs no retries; retry policy belongs
// to the caller.
type Client struct {
	token       string
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
}

// New creates a new Poster API client for the given access token.
func New(token string, opts ...Option) *Client {
	client := &Client{
		token:       token,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: ratelimit.New("Poster", defaultRatePerSecond),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the Poster API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/") + "/"
		}
	}
}

// WithRateLimiter sets a custom rate limiter. Passing nil disables limiting.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = l
	}
}

// GetTransactionsPage fetches a single page of transactions closed inside the
// given date range. Page indexes are 1-based.
func (c *Client) GetTransactionsPage(ctx context.Context, dateFrom, dateTo time.Time, page, perPage int) (Page[[]Transaction], error) {
	params := url.Values{}
	params.Set("date_from", dateFrom.Format("2006-01-02"))
	params.Set("date_to", dateTo.Format("2006-01-02"))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var result Page[[]Transaction]
	if err := c.getJSON(ctx, "transactions.getTransactions", params, &result); err != nil {
		return Page[[]Transaction]{}, err
	}
	return result, nil
}

// GetClients fetches the full client list in a single call. The endpoint
// returns everything at once; use GetClientsPage when paging is needed.
func (c *Client) GetClients(ctx context.Context) ([]ClientInfo, error) {
	var result []ClientInfo
	if err := c.getJSON(ctx, "clients.getClients", url.Values{}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetClientsPage fetches one page of clients. Kept symmetric with the
// transaction fetch even though the live API serves the list unpaginated.
func (c *Client) GetClientsPage(ctx context.Context, page, perPage int) ([]ClientInfo, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var result []ClientInfo
	if err := c.getJSON(ctx, "clients.getClients", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetClient looks up a single client by id.
func (c *Client) GetClient(ctx context.Context, clientID int64) (ClientInfo, error) {
	params := url.Values{}
	params.Set("client_id", strconv.FormatInt(clientID, 10))

	var result []ClientInfo
	if err := c.getJSON(ctx, "clients.getClient", params, &result); err != nil {
		return ClientInfo{}, err
	}
	if len(result) != 1 {
		return ClientInfo{}, &MalformedResponseError{Reason: fmt.Sprintf("expected 1 client record, got %d", len(result))}
	}
	return result[0], nil
}

// GetInfo fetches the account information of the authenticated application.
func (c *Client) GetInfo(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.getJSON(ctx, "application.getInfo", url.Values{}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// getJSON performs a GET against an RPC method, unwraps the response envelope
// and decodes the payload into target.
func (c *Client) getJSON(ctx context.Context, rpcMethod string, params url.Values, target any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	params.Set("token", c.token)
	endpoint := c.baseURL + rpcMethod + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("poster: request %s failed: %w", rpcMethod, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("poster: failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.NewRateLimitError("Poster API request limit reached")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("poster: %s returned status %d: %s", rpcMethod, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	payload, err := unwrapEnvelope(body)
	if err != nil {
		return err
	}

	return json.Unmarshal(payload, target)
}

// unwrapEnvelope extracts the success payload from a Poster response, or
// converts the documented error envelope into an APIError.
func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	var env struct {
		Response json.RawMessage `json:"response"`
		Message  string          `json:"message"`
		Code     *int            `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error()}
	}
	if env.Response != nil {
		return env.Response, nil
	}
	if env.Code != nil {
		return nil, &APIError{Message: env.Message, Code: *env.Code}
	}
	return nil, &MalformedResponseError{Reason: "response has neither response nor error field"}
}
