package xenocanto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	BaseURL    string
	Query      string
	TotalPages int
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
}

type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger

	sf singleflight.Group
}

// Intner is satisfied by *math/rand.Rand.
type Intner interface {
	Intn(n int) int
}

type envelope struct {
	NumRecordings json.RawMessage `json:"numRecordings"`
	Page          json.RawMessage `json:"page"`
	NumPages      json.RawMessage `json:"numPages"`
	Recordings    []Recording     `json:"recordings"`
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://xeno-canto.org/api/2/recordings"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Query == "" {
		cfg.Query = "q:A"
	}
	if cfg.TotalPages <= 0 {
		cfg.TotalPages = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "spectroquiz/1.0"
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *Client) Query() string { return c.cfg.Query }

// RandomPage draws a page number uniformly over [1, TotalPages].
func (c *Client) RandomPage(rng Intner) int {
	return rng.Intn(c.cfg.TotalPages) + 1
}

// FetchPage loads one page of recordings. Concurrent calls for the same
// query and page share a single request.
func (c *Client) FetchPage(ctx context.Context, query string, page int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = c.cfg.Query
	}
	if page <= 0 {
		page = 1
	}

	key := query + "|" + strconv.Itoa(page)
	v, err, shared := c.sf.Do(key, func() (any, error) {
		return c.fetch(ctx, query, page)
	})
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Int("page", page).Msg("recordings fetch failed")
		return Page{}, err
	}
	p := v.(Page)
	c.log.Debug().
		Str("query", query).
		Int("page", page).
		Int("recordings", p.Len()).
		Bool("shared", shared).
		Msg("recordings page loaded")
	return p, nil
}

func (c *Client) fetch(ctx context.Context, query string, page int) (Page, error) {
	fail := func(status int, err error) (Page, error) {
		return Page{}, &FetchError{Query: query, Page: page, Status: status, Err: err}
	}

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return fail(0, err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(resp.StatusCode, errors.New(apiErrorMessage(data)))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode envelope: %w", err))
	}
	if env.Recordings == nil {
		return fail(resp.StatusCode, errors.New("decode envelope: missing recordings array"))
	}

	p := Page{
		Query:      query,
		Number:     page,
		NumPages:   looseInt(env.NumPages),
		Recordings: env.Recordings,
	}
	if n := looseInt(env.Page); n > 0 {
		p.Number = n
	}
	if p.NumPages > 0 && page > p.NumPages {
		c.log.Warn().
			Int("page", page).
			Int("num_pages", p.NumPages).
			Msg("requested page beyond the query's page count; total_pages is stale")
	}
	return p, nil
}

// xeno-canto reports errors as {"error": "...", "message": "..."}.
func apiErrorMessage(data []byte) string {
	msg := strings.TrimSpace(string(data))
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		switch {
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Error != "":
			msg = parsed.Error
		}
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}

// The API has served counters both as numbers and as strings.
func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		n, _ = strconv.Atoi(strings.TrimSpace(s))
		return n
	}
	return 0
}
