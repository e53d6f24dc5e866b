// Package search runs query-string searches against the search index.
package search

import (
	"context"
	"errors"

	"github.com/mrlokans/rentals/internal/paging"
	"github.com/mrlokans/rentals/internal/searchindex"
)

// Index is the query side of the search index.
type Index interface {
	Query(ctx context.Context, q *searchindex.Query, page paging.Request) ([]searchindex.Document, int64, error)
}

// Page is one page of search results. Total is the number of matches in
// the index at query time, not the length of Items.
type Page struct {
	Items  []searchindex.Document `json:"items" msgpack:"items"`
	Total  int64                  `json:"total" msgpack:"total"`
	Offset int                    `json:"offset" msgpack:"offset"`
	Limit  int                    `json:"limit" msgpack:"limit"`
}

// Facade translates query strings into index queries. It never writes.
type Facade struct {
	index Index
	cache *Cache
}

type Option func(*Facade)

// WithCache serves repeated searches from c until the next index write.
func WithCache(c *Cache) Option {
	return func(f *Facade) {
		f.cache = c
	}
}

func NewFacade(index Index, opts ...Option) *Facade {
	f := &Facade{index: index}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Search parses query and returns the requested page.
func (f *Facade) Search(ctx context.Context, query string, page paging.Request) (*Page, error) {
	page = page.Normalize()

	q, err := searchindex.ParseQuery(query)
	if err != nil {
		var syn *searchindex.SyntaxError
		if errors.As(err, &syn) {
			return nil, &QuerySyntaxError{Query: query, Pos: syn.Pos, Msg: syn.Msg}
		}
		return nil, &QuerySyntaxError{Query: query, Msg: err.Error()}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cached, gen, ok := f.cache.Get(ctx, query, page)
	if ok {
		return cached, nil
	}

	docs, total, err := f.index.Query(ctx, q, page)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &IndexUnavailableError{Op: "query", Err: err}
	}

	result := &Page{Items: docs, Total: total, Offset: page.Offset, Limit: page.Limit}
	f.cache.Put(ctx, gen, query, page, result)
	return result, nil
}
