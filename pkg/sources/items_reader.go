package sources

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/feedsift/feedsift/internal/domain"
)

// itemsReader parses JSON item dumps: a top-level array of objects carrying
// id/guid, link, title, summary, and published keys. This is the artifact
// shape a fetch stage writes when feeds are collected out of band.
type itemsReader struct{}

// NewItemsReader returns the reader for JSON item dumps.
func NewItemsReader() Reader {
	return itemsReader{}
}

// wireItem tolerates both id and guid keys for the stable identifier.
type wireItem struct {
	ID        string `json:"id"`
	GUID      string `json:"guid"`
	Link      string `json:"link"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
}

func (itemsReader) Read(ctx context.Context, src Source) ([]domain.Entry, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read items document: %w", err)
	}

	var items []wireItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items document: %w", err)
	}

	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries = append(entries, domain.Entry{
			GUID:      cmp.Or(item.ID, item.GUID),
			Link:      item.Link,
			Title:     item.Title,
			Summary:   item.Summary,
			Published: item.Published,
		})
		if src.MaxItems > 0 && len(entries) >= src.MaxItems {
			break
		}
	}

	return entries, nil
}
