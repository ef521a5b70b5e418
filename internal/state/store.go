package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
)

// Ticket identifies one load of a slice. Only the most recent ticket of a
// slice may apply its result.
type Ticket uint64

// SearchState holds the latest search or subject browse.
type SearchState struct {
	Busy      bool
	Query     string
	Subject   bool // Query names a subject rather than a search
	Results   []openlibrary.BookSummary
	Err       error
	UpdatedAt time.Time
}

// DetailState holds the book currently shown in detail.
type DetailState struct {
	Busy      bool
	Key       string
	Book      *details.Book
	Err       error
	UpdatedAt time.Time
}

// RecentState holds the recent changes feed.
type RecentState struct {
	Busy                bool
	Changes             []openlibrary.ChangeEvent
	Err                 error
	UpdatedAt           time.Time
	ConsecutiveFailures int
}

// Stale reports whether the feed has failed repeatedly.
func (r RecentState) Stale() bool {
	return r.ConsecutiveFailures >= 2
}

// Snapshot is a copy of the store handed to presentation.
type Snapshot struct {
	Search  SearchState
	Detail  DetailState
	Recent  RecentState
	Version uint64
}

// Store coordinates concurrent loads. Each slice is owned by one kind of
// operation and never touched by another.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot

	searchSeq Ticket
	detailSeq Ticket
	recentSeq Ticket

	subscribers []chan struct{}
}

// BeginSearch marks a search (or subject browse when subject is true) as in
// flight and returns its ticket.
func (s *Store) BeginSearch(query string, subject bool) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchSeq++
	s.snapshot.Search.Busy = true
	s.snapshot.Search.Query = query
	s.snapshot.Search.Subject = subject
	s.changedLocked()
	return s.searchSeq
}

// FinishSearch applies a search result. It returns false and changes nothing
// when a newer search has started since t was issued. On error the previous
// results are cleared.
func (s *Store) FinishSearch(t Ticket, results []openlibrary.BookSummary, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.searchSeq {
		return false
	}
	search := &s.snapshot.Search
	search.Busy = false
	search.UpdatedAt = time.Now()
	if err != nil {
		search.Results = nil
		search.Err = err
	} else {
		search.Results = slices.Clone(results)
		search.Err = nil
	}
	s.changedLocked()
	return true
}

// CancelSearch releases t without applying a result. The previous results
// and error stay in place. It returns false when a newer search owns the slice.
func (s *Store) CancelSearch(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.searchSeq {
		return false
	}
	s.snapshot.Search.Busy = false
	s.changedLocked()
	return true
}

// BeginDetail marks a detail load for key as in flight.
func (s *Store) BeginDetail(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detailSeq++
	s.snapshot.Detail.Busy = true
	s.snapshot.Detail.Key = key
	s.changedLocked()
	return s.detailSeq
}

// FinishDetail applies a detail result under the same rules as FinishSearch.
func (s *Store) FinishDetail(t Ticket, book *details.Book, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.detailSeq {
		return false
	}
	detail := &s.snapshot.Detail
	detail.Busy = false
	detail.UpdatedAt = time.Now()
	if err != nil {
		detail.Book = nil
		detail.Err = err
	} else {
		detail.Book = book
		detail.Err = nil
	}
	s.changedLocked()
	return true
}

// CancelDetail releases t without applying a result.
func (s *Store) CancelDetail(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.detailSeq {
		return false
	}
	s.snapshot.Detail.Busy = false
	s.changedLocked()
	return true
}

// BeginRecent marks a feed refresh as in flight.
func (s *Store) BeginRecent() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recentSeq++
	s.snapshot.Recent.Busy = true
	s.changedLocked()
	return s.recentSeq
}

// FinishRecent applies a feed refresh. On error the list is emptied and the
// failure counted.
func (s *Store) FinishRecent(t Ticket, changes []openlibrary.ChangeEvent, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.recentSeq {
		return false
	}
	recent := &s.snapshot.Recent
	recent.Busy = false
	recent.UpdatedAt = time.Now()
	if err != nil {
		recent.Changes = nil
		recent.Err = err
		recent.ConsecutiveFailures++
	} else {
		recent.Changes = slices.Clone(changes)
		recent.Err = nil
		recent.ConsecutiveFailures = 0
	}
	s.changedLocked()
	return true
}

// CancelRecent releases t without applying a result. A cancelled refresh is
// not a feed failure: the changes, the error and the failure count are kept.
func (s *Store) CancelRecent(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.recentSeq {
		return false
	}
	s.snapshot.Recent.Busy = false
	s.changedLocked()
	return true
}

// Snapshot returns a copy of the current state. The detail book is cloned, so
// callers may keep the snapshot while loads continue.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Search.Results = slices.Clone(s.snapshot.Search.Results)
	snap.Search.Err = cloneErr(s.snapshot.Search.Err)
	snap.Detail.Book = s.snapshot.Detail.Book.Clone()
	snap.Detail.Err = cloneErr(s.snapshot.Detail.Err)
	snap.Recent.Changes = slices.Clone(s.snapshot.Recent.Changes)
	snap.Recent.Err = cloneErr(s.snapshot.Recent.Err)
	return snap
}

// Subscribe returns a channel that receives a signal after every applied
// change. Signals coalesce: a slow reader sees at most one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Store) changedLocked() {
	s.snapshot.Version++
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w", err)
}
