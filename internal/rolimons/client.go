package rolimons

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"catalog-proxy-api/internal/model"
	"catalog-proxy-api/internal/repository"
	"catalog-proxy-api/pkg/apierror"

	"github.com/go-resty/resty/v2"
)

// DefaultURL is the Rolimons bulk item-details endpoint.
const DefaultURL = "https://api.rolimons.com/items/v1/itemdetails"

// rapIndex is the position of the RAP value inside an item row
// [name, acronym, rap, value, defaultValue, ...].
const rapIndex = 2

// itemDetailsResponse is the raw bulk response shape.
type itemDetailsResponse struct {
	Success bool                         `json:"success"`
	Items   map[string][]json.RawMessage `json:"items"`
}

// Client fetches the community price index.
type Client struct {
	http *resty.Client
	url  string
	logs repository.CallLogRepository
}

// NewClient creates a price-index client. logs may be nil.
func NewClient(url string, timeout time.Duration, logs repository.CallLogRepository) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	hc := resty.New()
	hc.SetTimeout(timeout)

	return &Client{http: hc, url: url, logs: logs}
}

// FetchSnapshot downloads the full price index and extracts one
// PriceRecord per item. Rows with a missing or non-numeric RAP are kept
// with RAP zero so lookups treat them as "no usable price".
func (c *Client) FetchSnapshot(ctx context.Context) (map[string]model.PriceRecord, error) {
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	duration := time.Since(start)

	if err != nil {
		c.record(0, duration, err)
		return nil, apierror.PriceIndexUnavailable(fmt.Sprintf("price index request failed: %v", err))
	}
	c.record(resp.StatusCode(), duration, nil)

	if resp.StatusCode() != http.StatusOK {
		return nil, apierror.PriceIndexUnavailable(
			fmt.Sprintf("price index returned status %d", resp.StatusCode()))
	}

	var body itemDetailsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, apierror.PriceIndexUnavailable("price index returned malformed JSON")
	}
	if !body.Success {
		return nil, apierror.PriceIndexUnavailable("price index reported failure")
	}

	items := make(map[string]model.PriceRecord, len(body.Items))
	for id, row := range body.Items {
		items[id] = parseRow(row)
	}
	return items, nil
}

// parseRow extracts the name and RAP from one item row.
func parseRow(row []json.RawMessage) model.PriceRecord {
	var rec model.PriceRecord

	if len(row) > 0 {
		_ = json.Unmarshal(row[0], &rec.Name)
	}
	if len(row) > rapIndex {
		var rap float64
		if err := json.Unmarshal(row[rapIndex], &rap); err == nil {
			rec.RAP = int64(rap)
		}
	}
	return rec
}

func (c *Client) record(status int, duration time.Duration, callErr error) {
	if c.logs == nil {
		return
	}

	entry := &model.CallLog{
		Method:     http.MethodGet,
		URL:        c.url,
		Status:     status,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.logs.Insert(ctx, entry); err != nil {
			log.Printf("[RolimonsClient] call log insert failed: %v", err)
		}
	}()
}
