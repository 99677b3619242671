// Package xtream is a client for the player_api.php catalog protocol.
package xtream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/httpclient"
	"github.com/cesargomez89/streamhub/internal/metrics"
)

// Client fetches profile, category and item listings from one account.
// Each call issues exactly one GET; failures are never retried.
type Client struct {
	http     *httpclient.Client
	logger   *slog.Logger
	baseURL  string
	username string
	password string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the paced HTTP client used for requests.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a client for baseURL. A single trailing slash is removed.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewClient(nil, 0, 1, constants.DefaultUserAgent)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "xtream")
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) buildURL(action string, params url.Values) string {
	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)
	q.Set("action", action)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return c.baseURL + constants.PlayerAPIPath + "?" + q.Encode()
}

// get performs one request and decodes the body into v. The returned body
// bytes are the raw response for callers that persist it verbatim.
func (c *Client) get(ctx context.Context, action string, params url.Values, v interface{}) ([]byte, error) {
	u := c.buildURL(action, params)
	c.logger.Debug("Xtream request", "action", action, "category_id", params.Get("category_id"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.NetworkError{Action: action, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		metrics.RecordRemoteRequest(action, 0)
		return nil, &domain.NetworkError{Action: action, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(action, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.NetworkError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP error! status: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Action: action, Err: err}
	}
	if acct, ok := v.(*Account); ok {
		err = decodeAccount(body, acct)
	} else {
		err = decodeListing(body, v)
	}
	if err != nil {
		return nil, &domain.NetworkError{Action: action, Err: &domain.DecodeError{Action: action, Err: err}}
	}
	return body, nil
}

var errEmptyBody = errors.New("empty response body")

// decodeListing tolerates panels that answer an empty listing with null, "" or {}.
// A body with no content at all is a decode failure.
func decodeListing(body []byte, v interface{}) error {
	switch strings.TrimSpace(string(body)) {
	case "":
		return errEmptyBody
	case "null", `""`, "{}", "[]":
		return nil
	}
	return json.Unmarshal(body, v)
}

// decodeAccount requires a JSON object carrying a user_info block.
func decodeAccount(body []byte, acct *Account) error {
	if strings.TrimSpace(string(body)) == "" {
		return errEmptyBody
	}
	var head struct {
		UserInfo json.RawMessage `json:"user_info"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return err
	}
	if info := strings.TrimSpace(string(head.UserInfo)); info == "" || info == "null" {
		return errors.New("response has no user_info")
	}
	return json.Unmarshal(body, acct)
}

// GetProfile validates the credentials. Every failure of the call, including
// transport errors, undecodable bodies and an explicit auth=0, is an
// AuthenticationError.
func (c *Client) GetProfile(ctx context.Context) (*Account, error) {
	var acct Account
	body, err := c.get(ctx, constants.ActionGetProfile, nil, &acct)
	if err != nil {
		authErr := &domain.AuthenticationError{Err: err}
		var ne *domain.NetworkError
		if errors.As(err, &ne) {
			authErr.StatusCode = ne.StatusCode
		}
		return nil, authErr
	}
	if acct.UserInfo.Auth == "0" {
		return nil, &domain.AuthenticationError{Err: fmt.Errorf("account rejected by %s", c.baseURL)}
	}
	acct.Raw = domain.RawJSON(body)
	return &acct, nil
}

// GetCategories lists the categories of kind.
func (c *Client) GetCategories(ctx context.Context, kind domain.Kind) ([]RawCategory, error) {
	action, err := categoriesAction(kind)
	if err != nil {
		return nil, err
	}
	var out []RawCategory
	if _, err := c.get(ctx, action, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLiveStreams lists live channels. An empty categoryID fetches every channel.
func (c *Client) GetLiveStreams(ctx context.Context, categoryID string) ([]RawLiveStream, error) {
	var out []RawLiveStream
	if _, err := c.get(ctx, constants.ActionGetLiveStreams, categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVODStreams lists movies. An empty categoryID fetches every movie.
func (c *Client) GetVODStreams(ctx context.Context, categoryID string) ([]RawVODStream, error) {
	var out []RawVODStream
	if _, err := c.get(ctx, constants.ActionGetVODStreams, categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSeries lists series. An empty categoryID fetches every series.
func (c *Client) GetSeries(ctx context.Context, categoryID string) ([]RawSeries, error) {
	var out []RawSeries
	if _, err := c.get(ctx, constants.ActionGetSeries, categoryParams(categoryID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetItems dispatches to the listing call for kind.
func (c *Client) GetItems(ctx context.Context, kind domain.Kind, categoryID string) (Items, error) {
	items := Items{Kind: kind}
	var err error
	switch kind {
	case domain.KindLive:
		items.Live, err = c.GetLiveStreams(ctx, categoryID)
	case domain.KindMovie:
		items.Movies, err = c.GetVODStreams(ctx, categoryID)
	case domain.KindSeries:
		items.Series, err = c.GetSeries(ctx, categoryID)
	default:
		err = fmt.Errorf("unknown content kind %q", kind)
	}
	return items, err
}

func categoriesAction(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindLive:
		return constants.ActionGetLiveCategories, nil
	case domain.KindMovie:
		return constants.ActionGetVODCategories, nil
	case domain.KindSeries:
		return constants.ActionGetSeriesCategories, nil
	}
	return "", fmt.Errorf("unknown content kind %q", kind)
}

func categoryParams(categoryID string) url.Values {
	if categoryID == "" {
		return nil
	}
	return url.Values{"category_id": {categoryID}}
}
