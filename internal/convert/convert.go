// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"log/slog"
	"time"

	"github.com/pdiddy/lotion/internal/notion"
)

// BlockSource fetches a page's block hierarchy.
type BlockSource interface {
	BlockTree(ctx context.Context, containerID string) ([]notion.Block, error)
}

// PageBody fetches and renders a page's content. Fetch or render failures
// degrade to an empty body with a warning; one broken page must never
// abort the rest of a batch.
func PageBody(ctx context.Context, src BlockSource, pageID string, logger *slog.Logger) string {
	blocks, err := src.BlockTree(ctx, pageID)
	if err != nil {
		logger.Warn("failed to convert page body",
			slog.String("page_id", pageID), slog.String("error", err.Error()))
		return ""
	}
	return RenderBlocks(blocks, 0)
}

// PageDocument assembles the final file content for a page: metadata
// block, an H1 heading when the page has a title, then the rendered body.
func PageDocument(page notion.Page, body string, now time.Time) (string, error) {
	frontmatter, err := BuildFrontmatter(page, nil, now)
	if err != nil {
		return "", err
	}

	heading := ""
	if title := ExtractTitle(page.Properties); title != "" {
		heading = "# " + title + "\n\n"
	}

	return frontmatter + "\n" + heading + body, nil
}
