package store

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
)

// PagedTransactionFeed accumulates the all-transactions feed one page at a time.
type PagedTransactionFeed struct {
	tracker
	source FeedSource
	data   transaction.Page
	pages  int
}

func NewPagedTransactionFeed(source FeedSource, opts ...Option) *PagedTransactionFeed {
	s := &PagedTransactionFeed{source: source}
	s.init("paged_feed", opts)
	return s
}

// FetchAll fetches the next page and appends it to the accumulated items.
// It reports whether a further call would fetch another page.
//
// Once the feed is exhausted the call is a no-op returning false. A call made
// while a page is still loading is rejected with ErrConcurrentFetchRejected;
// pages are never fetched concurrently.
func (f *PagedTransactionFeed) FetchAll(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		f.record(observability.ResultRejected)
		f.logger.Error().Err(domainErrors.ErrConcurrentFetchRejected).Msg("Page fetch issued while another is in flight")
		return false, domainErrors.ErrConcurrentFetchRejected
	}
	if f.valid && f.data.Exhausted() {
		f.mu.Unlock()
		f.record(observability.ResultNoop)
		f.logger.Debug().Msg("Feed exhausted, skipping fetch")
		return false, nil
	}
	var token *string
	if f.valid {
		token = f.data.NextPageToken
	}
	seq := f.begin()
	f.mu.Unlock()

	start := time.Now()
	page, err := f.source.Transactions(ctx, token)
	f.observe(start)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.latest(seq) {
		f.discard(seq)
		return f.hasMore(), nil
	}
	f.loading = false
	if err != nil {
		f.record(observability.ResultError)
		return f.hasMore(), fmt.Errorf("fetch transactions page: %w", err)
	}

	var prev []transaction.Transaction
	if f.valid {
		prev = f.data.Items
	}
	// Build a fresh slice so snapshots handed out earlier are never written to.
	items := make([]transaction.Transaction, 0, len(prev)+len(page.Items))
	items = append(items, prev...)
	items = append(items, page.Items...)

	f.data = transaction.Page{Items: items, NextPageToken: page.NextPageToken}
	f.valid = true
	f.pages++
	f.record(observability.ResultOK)
	if f.metrics != nil {
		f.metrics.FeedPagesLoaded.Set(float64(f.pages))
	}
	f.logger.Debug().
		Int("page", f.pages).
		Int("items", len(page.Items)).
		Bool("exhausted", page.Exhausted()).
		Msg("Feed page loaded")

	return f.hasMore(), nil
}

// hasMore reports whether the next FetchAll would hit the upstream. Caller holds mu.
func (f *PagedTransactionFeed) hasMore() bool {
	return !f.valid || !f.data.Exhausted()
}

// InvalidateData drops every accumulated page; the next FetchAll starts from page one.
func (f *PagedTransactionFeed) InvalidateData() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.data = transaction.Page{}
	f.pages = 0
	if f.metrics != nil {
		f.metrics.FeedPagesLoaded.Set(0)
	}
}

func (f *PagedTransactionFeed) Snapshot() Snapshot[transaction.Page] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[transaction.Page]{Data: f.data, Valid: f.valid, Loading: f.loading}
}
