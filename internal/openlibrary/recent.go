package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RecentFetchSize is the page requested from the feed regardless of the
// display limit, leaving room for filtering.
const RecentFetchSize = 50

// Change kinds surfaced from the feed.
const (
	KindAddBook       = "add-book"
	KindEditBook      = "edit-book"
	KindMergeAuthors  = "merge-authors"
	KindAddCover      = "add-cover"
	KindCreateWork    = "create-work"
	KindEditWork      = "edit-work"
	KindCreateEdition = "create-edition"
	KindEditEdition   = "edit-edition"
)

var kindLabels = map[string]string{
	KindAddBook:       "Added book",
	KindEditBook:      "Edited book",
	KindMergeAuthors:  "Merged authors",
	KindAddCover:      "Added cover",
	KindCreateWork:    "Created work",
	KindEditWork:      "Edited work",
	KindCreateEdition: "Created edition",
	KindEditEdition:   "Edited edition",
}

// AllowedKind reports whether kind is surfaced by FetchRecentChanges.
func AllowedKind(kind string) bool {
	_, ok := kindLabels[kind]
	return ok
}

// KindLabel returns a display label for kind, or kind itself when it is not
// allow-listed.
func KindLabel(kind string) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return kind
}

// FetchRecentChanges returns up to limit allow-listed changes in feed order.
// A limit <= 0 keeps every allowed entry of the fetched page.
func (c *Client) FetchRecentChanges(ctx context.Context, limit int) ([]ChangeEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(RecentFetchSize))
	rel := &url.URL{Path: "/recentchanges.json", RawQuery: values.Encode()}

	var records []changeRecord
	if err := c.doURL(ctx, rel, &records); err != nil {
		return nil, err
	}
	events := make([]ChangeEvent, 0, len(records))
	for _, r := range records {
		events = append(events, r.event())
	}
	return FilterChanges(events, limit), nil
}

// FilterChanges keeps allow-listed kinds and truncates to limit without
// reordering.
func FilterChanges(events []ChangeEvent, limit int) []ChangeEvent {
	var out []ChangeEvent
	for _, evt := range events {
		if !AllowedKind(evt.Kind) {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
