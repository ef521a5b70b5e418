package openlibrary

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedFixture builds n raw entries where every index in allowed carries an
// allow-listed kind and the rest carry "update".
func feedFixture(n int, allowed map[int]bool) []map[string]any {
	kinds := []string{KindAddBook, KindEditBook, KindMergeAuthors, KindAddCover, KindCreateWork, KindEditWork, KindCreateEdition, KindEditEdition}
	entries := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		kind := "update"
		if allowed[i] {
			kind = kinds[i%len(kinds)]
		}
		entries = append(entries, map[string]any{
			"id":        fmt.Sprintf("%d", 1000+i),
			"kind":      kind,
			"timestamp": "2024-05-01T12:00:00.000000",
			"comment":   fmt.Sprintf("entry %d", i),
			"author":    nil,
			"changes":   []map[string]any{{"key": fmt.Sprintf("/books/OL%dM", i), "revision": 1}},
		})
	}
	return entries
}

func TestClient_FetchRecentChangesFiltersAndTruncates(t *testing.T) {
	t.Parallel()

	allowed := map[int]bool{}
	for _, i := range []int{2, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41} {
		allowed[i] = true
	}
	feed := feedFixture(50, allowed)

	var gotLimit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recentchanges.json", r.URL.Path)
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(feed)
	})

	events, err := c.FetchRecentChanges(testContext(t), 5)
	require.NoError(t, err)
	assert.Equal(t, "50", gotLimit)

	require.Len(t, events, 5)
	wantIDs := []string{"1002", "1005", "1007", "1011", "1013"}
	for i, evt := range events {
		assert.Equal(t, wantIDs[i], evt.ID)
		assert.True(t, AllowedKind(evt.Kind), "kind %q not allowed", evt.Kind)
	}
}

func TestClient_FetchRecentChangesStatusError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	events, err := c.FetchRecentChanges(testContext(t), 5)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Nil(t, events)
}

func TestFilterChanges(t *testing.T) {
	events := []ChangeEvent{
		{ID: "1", Kind: KindEditWork},
		{ID: "2", Kind: "update"},
		{ID: "3", Kind: KindAddCover},
		{ID: "4", Kind: "new-account"},
		{ID: "5", Kind: KindMergeAuthors},
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "no limit keeps all allowed", limit: 0, want: []string{"1", "3", "5"}},
		{name: "limit truncates in order", limit: 2, want: []string{"1", "3"}},
		{name: "limit above matches", limit: 10, want: []string{"1", "3", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterChanges(events, tt.limit)
			ids := make([]string, 0, len(got))
			for _, evt := range got {
				ids = append(ids, evt.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Nil(t, FilterChanges(nil, 5))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Added book", KindLabel(KindAddBook))
	assert.Equal(t, "Edited edition", KindLabel(KindEditEdition))
	assert.Equal(t, "new-account", KindLabel("new-account"))
}
