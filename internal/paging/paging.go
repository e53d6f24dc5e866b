// Package paging describes page requests shared by the relational loader
// and the search facade.
package paging

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Order is a single sort key. Field is an API-level name, not a column.
type Order struct {
	Field string
	Desc  bool
}

// Request is an offset/limit page with optional sort keys.
type Request struct {
	Offset int
	Limit  int
	Sort   []Order
}

// Normalize clamps offset and limit into their valid ranges.
func (r Request) Normalize() Request {
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Parse builds a Request from raw query parameters.
// sort uses the "field,-other" form where a leading '-' means descending.
func Parse(offset, limit, sort string) (Request, error) {
	var r Request
	if offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil || v < 0 {
			return Request{}, fmt.Errorf("invalid offset %q", offset)
		}
		r.Offset = v
	}
	if limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v <= 0 {
			return Request{}, fmt.Errorf("invalid limit %q", limit)
		}
		r.Limit = v
	}
	for _, part := range strings.Split(sort, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		o := Order{Field: part}
		if strings.HasPrefix(part, "-") {
			o = Order{Field: part[1:], Desc: true}
		}
		if o.Field == "" {
			return Request{}, fmt.Errorf("invalid sort %q", sort)
		}
		r.Sort = append(r.Sort, o)
	}
	return r.Normalize(), nil
}

// Clause renders the sort keys as an ORDER BY expression. Only fields
// present in allowed are used, mapped to their column names. The id
// column is always appended so that pages are stable.
func (r Request) Clause(allowed map[string]string, idColumn string) string {
	var parts []string
	seenID := false
	for _, o := range r.Sort {
		col, ok := allowed[o.Field]
		if !ok {
			continue
		}
		if col == idColumn {
			seenID = true
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if !seenID {
		parts = append(parts, idColumn+" ASC")
	}
	return strings.Join(parts, ", ")
}
