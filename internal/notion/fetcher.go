// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// blockChildrenResponse is one page of a block children listing.
type blockChildrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// BlockTree fetches the full block hierarchy under containerID (a page or
// block id). Listing is paginated until the cursor runs out, and every
// block that reports children is descended into before it is appended, so
// the returned tree is complete. Nothing is cached: each call re-fetches
// from origin.
func (c *Client) BlockTree(ctx context.Context, containerID string) ([]Block, error) {
	var blocks []Block
	cursor := ""

	for {
		path := fmt.Sprintf("/v1/blocks/%s/children?page_size=%d", containerID, pageSize)
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var page blockChildrenResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", containerID, err)
		}

		for _, block := range page.Results {
			if block.HasChildren {
				children, err := c.BlockTree(ctx, block.ID)
				if err != nil {
					return nil, err
				}
				block.Children = children
			}
			blocks = append(blocks, block)
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return blocks, nil
}

// queryRequest is the body of a data source query.
type queryRequest struct {
	PageSize    int            `json:"page_size"`
	StartCursor string         `json:"start_cursor,omitempty"`
	Filter      map[string]any `json:"filter,omitempty"`
}

// queryResponse is one page of data source query results.
type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDataSource lists the pages of a data source, fully paginated. A
// non-empty modifiedAfter timestamp narrows the listing server-side to
// pages edited after it; pages at exactly that timestamp are excluded, so
// callers pass a low-water mark they have already synced past.
func (c *Client) QueryDataSource(ctx context.Context, dataSourceID, modifiedAfter string) ([]Page, error) {
	var filter map[string]any
	if modifiedAfter != "" {
		filter = map[string]any{
			"timestamp":        "last_edited_time",
			"last_edited_time": map[string]any{"after": modifiedAfter},
		}
	}

	var pages []Page
	cursor := ""

	for {
		req := queryRequest{PageSize: pageSize, StartCursor: cursor, Filter: filter}

		var resp queryResponse
		path := "/v1/data_sources/" + dataSourceID + "/query"
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, fmt.Errorf("querying data source %s: %w", dataSourceID, err)
		}

		for _, result := range resp.Results {
			if result.Object == "page" {
				pages = append(pages, result)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

// RetrievePage fetches a single page's metadata and properties.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return Page{}, fmt.Errorf("retrieving page %s: %w", pageID, err)
	}
	return page, nil
}

// searchRequest is the body of a global search call.
type searchRequest struct {
	Filter      map[string]string `json:"filter"`
	PageSize    int               `json:"page_size"`
	StartCursor string            `json:"start_cursor,omitempty"`
}

// searchResponse is one page of search results.
type searchResponse struct {
	Results    []DataSource `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// SearchDataSources lists every data source the integration can see. Used
// to enumerate candidate sync targets.
func (c *Client) SearchDataSources(ctx context.Context) ([]DataSource, error) {
	var sources []DataSource
	cursor := ""

	for {
		req := searchRequest{
			Filter:      map[string]string{"property": "object", "value": "data_source"},
			PageSize:    pageSize,
			StartCursor: cursor,
		}

		var resp searchResponse
		if err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
			return nil, fmt.Errorf("searching data sources: %w", err)
		}

		for _, result := range resp.Results {
			if result.Object == "data_source" {
				sources = append(sources, result)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return sources, nil
}
