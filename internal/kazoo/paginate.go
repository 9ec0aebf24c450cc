// SPDX-License-Identifier: MIT

package kazoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kazlabs/kzrec/internal/metrics"
)

// envelope is the Crossbar list response shape.
type envelope[T any] struct {
	Data         []T    `json:"data"`
	NextStartKey Cursor `json:"next_start_key"`
	Status       string `json:"status"`
}

// resource identifies a paged list endpoint.
type resource struct {
	label     string // user-facing subsystem label for error messages
	operation string // structured-log operation name
	path      string // request path relative to the account
}

func (r resource) accountPath(accountID string) string {
	return "/accounts/" + url.PathEscape(accountID) + r.path
}

// fetchAll drains a cursor-paged list resource into a single slice.
//
// Pages are requested strictly sequentially: each page's existence depends on
// the previous page's cursor. The chain terminates when the response carries
// no next cursor, or when the next cursor equals the cursor just used
// (cursor stability marks end-of-data). Item order is first-seen append
// order across pages; no dedup. Any page failure aborts the whole chain with
// a FetchError and no partial results.
func fetchAll[T any](ctx context.Context, c *Client, res resource, params url.Values) ([]T, error) {
	var (
		out    []T
		cursor Cursor
		pages  int
	)
	for {
		q := url.Values{}
		for k, vs := range params {
			q[k] = append([]string(nil), vs...)
		}
		if c.pageSize > 0 {
			q.Set("page_size", strconv.Itoa(c.pageSize))
		}
		if cursor != "" {
			q.Set("start_key", string(cursor))
		}

		body, err := c.get(ctx, res.accountPath(c.accountID), res.operation, q)
		if err != nil {
			metrics.RecordFetchFailure(res.label)
			return nil, &FetchError{Resource: res.label, Err: err}
		}

		var env envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			metrics.RecordFetchFailure(res.label)
			return nil, &FetchError{
				Resource: res.label,
				Err:      fmt.Errorf("%w: decode %s: %v", ErrUpstreamBadResponse, res.operation, err),
			}
		}

		out = append(out, env.Data...)
		pages++
		metrics.RecordPageFetch(res.label)

		if env.NextStartKey == "" || env.NextStartKey == cursor {
			logger := c.loggerFor(ctx)
			logger.Debug().
				Str("operation", res.operation).
				Int("pages", pages).
				Int("items", len(out)).
				Msg("pagination complete")
			return out, nil
		}
		cursor = env.NextStartKey
	}
}
