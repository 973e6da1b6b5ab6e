package gateway

import (
	"context"
	"net/http"

	"mydaylog/internal/domain/meal"
)

// FetchRange returns the recorded days between from and to inclusive.
// POST: a malformed body yields an empty, non-nil map
func (c *Client) FetchRange(ctx context.Context, from, to string) (meal.Month, error) {
	var days meal.Month
	if err := c.do(ctx, http.MethodGet, query("/meals", "from", from, "to", to), nil, &days); err != nil {
		return nil, err
	}
	if days == nil {
		days = meal.Month{}
	}
	return days, nil
}

// PatchOne applies a partial update to one date.
func (c *Client) PatchOne(ctx context.Context, p meal.Patch) error {
	return c.do(ctx, http.MethodPatch, "/meals", p, nil)
}

// PatchBulk applies partial updates to many dates in one request.
func (c *Client) PatchBulk(ctx context.Context, items []meal.Patch) error {
	return c.do(ctx, http.MethodPatch, "/meals/bulk", map[string][]meal.Patch{"items": items}, nil)
}

// Stats returns the server-computed summary of a month.
func (c *Client) Stats(ctx context.Context, month, today string) (meal.Summary, error) {
	var s meal.Summary
	err := c.do(ctx, http.MethodGet, query("/meals/stats", "month", month, "today", today), nil, &s)
	return s, err
}

// Report returns the markdown report of a month.
func (c *Client) Report(ctx context.Context, month string) (string, error) {
	var doc string
	err := c.do(ctx, http.MethodGet, query("/meals/report", "month", month), nil, &doc)
	return doc, err
}
