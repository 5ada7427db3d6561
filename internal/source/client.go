// Package source fetches the full record set from the financial data backend.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bighogz/fintable/internal/config"
	"github.com/bighogz/fintable/internal/httpclient"
	"github.com/bighogz/fintable/internal/models"
	"github.com/bighogz/fintable/internal/telemetry"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrNotArray        = errors.New("response is not a JSON array")
)

// FetchError reports a failed load: a transport failure (Status 0), a
// non-success status, or a body that could not be decoded.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Rejected is an element of the response that could not be turned into a Record.
type Rejected struct {
	Index int
	Err   error
}

// Result is a successful load.
type Result struct {
	Records  []models.Record
	Rejected []Rejected
}

type Client struct {
	URL         string
	RecordsPath string
	HTTP        *http.Client
	Logger      *slog.Logger
	// Strict fails a load when any element was rejected.
	Strict bool
}

func New(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		URL:         cfg.APIURL,
		RecordsPath: cfg.RecordsPath,
		HTTP:        httpclient.New(cfg.HTTPTimeout),
		Logger:      logger,
	}
}

// Load fetches the whole record set once.
func (c *Client) Load(ctx context.Context) ([]models.Record, error) {
	res, err := c.Fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// LoadWith fetches the record set, forwarding criteria and sortBy as query
// parameters for backends that filter server side.
func (c *Client) LoadWith(ctx context.Context, criteria models.FilterCriteria, sortBy models.Field) ([]models.Record, error) {
	res, err := c.Fetch(ctx, Query(criteria, sortBy))
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Fetch issues a single GET with the given query parameters. There is no retry.
func (c *Client) Fetch(ctx context.Context, q url.Values) (*Result, error) {
	u := c.URL
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + q.Encode()
	}
	ctx, span := telemetry.Tracer().Start(ctx, "source.Fetch")
	defer span.End()

	res, err := c.fetch(ctx, u)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("records.accepted", len(res.Records)),
		attribute.Int("records.rejected", len(res.Rejected)),
	)
	for _, r := range res.Rejected {
		c.Logger.Warn("rejected record", "index", r.Index, "error", r.Err)
	}
	c.Logger.Info("records loaded", "url", u, "count", len(res.Records), "rejected", len(res.Rejected))
	if c.Strict && len(res.Rejected) > 0 {
		first := res.Rejected[0]
		return nil, fmt.Errorf("%d malformed records, first at index %d: %w", len(res.Rejected), first.Index, first.Err)
	}
	return res, nil
}

func (c *Client) fetch(ctx context.Context, u string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	client := c.HTTP
	if client == nil {
		client = httpclient.Default
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: u, Status: resp.StatusCode, Err: errors.New(resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: u, Status: resp.StatusCode, Err: err}
	}
	res, err := Decode(body, c.RecordsPath)
	if err != nil {
		return nil, &FetchError{URL: u, Status: resp.StatusCode, Err: err}
	}
	return res, nil
}

// Query serializes the set bounds of criteria plus sortBy.
func Query(criteria models.FilterCriteria, sortBy models.Field) url.Values {
	q := url.Values{}
	if criteria.StartDate != "" {
		q.Set(models.FilterStartDate, criteria.StartDate)
	}
	if criteria.EndDate != "" {
		q.Set(models.FilterEndDate, criteria.EndDate)
	}
	setFloat(q, models.FilterMinRevenue, criteria.MinRevenue)
	setFloat(q, models.FilterMaxRevenue, criteria.MaxRevenue)
	setFloat(q, models.FilterMinNetIncome, criteria.MinNetIncome)
	setFloat(q, models.FilterMaxNetIncome, criteria.MaxNetIncome)
	if sortBy != "" {
		q.Set("sortBy", string(sortBy))
	}
	return q
}

func setFloat(q url.Values, key string, v *float64) {
	if v != nil {
		q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}
