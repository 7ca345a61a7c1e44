package sources

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/mmcdole/gofeed"

	"github.com/feedsift/feedsift/internal/domain"
)

// feedReader parses RSS, Atom, and JSON feed documents.
type feedReader struct {
	parser *gofeed.Parser
}

// NewFeedReader returns the reader for feed documents.
func NewFeedReader() Reader {
	return &feedReader{parser: gofeed.NewParser()}
}

// Read parses the document at the source path. Entry fields stay exactly as
// the feed declared them; in particular the published date is kept as raw
// text and the GUID is not backfilled from the link.
func (f *feedReader) Read(ctx context.Context, src Source) ([]domain.Entry, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read feed document: %w", err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed document: %w", err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}

		entries = append(entries, domain.Entry{
			GUID:      item.GUID,
			Link:      item.Link,
			Title:     item.Title,
			Summary:   item.Description,
			Published: item.Published,
		})
		if src.MaxItems > 0 && len(entries) >= src.MaxItems {
			break
		}
	}

	return entries, nil
}
