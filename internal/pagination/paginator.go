package pagination

import (
	"context"
	"strings"

	apperrors "github.com/allisson/tasks/internal/errors"
)

const (
	// DefaultPageSize is used when the requested page size is below 1.
	DefaultPageSize = 10
	// MaxPageSize caps the requested page size.
	MaxPageSize = 50
)

// Direction selects which side of the cursor a page is read from.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// ParseDirection converts a query value into a Direction. An empty value means Forward.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Forward:
		return Forward, nil
	case Backward:
		return Backward, nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid direction %q", s)
	}
}

// Request is a client pagination request.
type Request struct {
	Cursor    string
	PageSize  int
	Direction Direction
}

// Normalize clamps PageSize into [1, MaxPageSize] and defaults Direction.
func (r Request) Normalize() Request {
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	if r.Direction == "" {
		r.Direction = Forward
	}
	return r
}

// Query is what a repository needs to run one bounded range query.
//
// Rows must be ordered ascending by the sort key for Forward and descending
// for Backward, filtered strictly past Cursor when it is set.
type Query struct {
	Cursor    *Value
	Limit     int
	Direction Direction
}

// Page is one page of results.
type Page[T any] struct {
	Items           []T
	NextCursor      *string
	PreviousCursor  *string
	HasNextPage     bool
	HasPreviousPage bool
	PageSize        int
}

// FetchFunc loads up to q.Limit rows for q.
type FetchFunc[T any] func(ctx context.Context, q Query) ([]T, error)

// KeyFunc extracts the sort key of an item.
type KeyFunc[T any] func(item T) Value

// Paginate reads one page through fetch.
//
// A malformed cursor restarts from the beginning. HasPreviousPage only reports
// that a cursor was supplied; it does not probe for rows before the page.
func Paginate[T any](ctx context.Context, req Request, key KeyFunc[T], fetch FetchFunc[T]) (*Page[T], error) {
	req = req.Normalize()

	var cursor *Value
	if req.Cursor != "" {
		if v, err := Decode(req.Cursor); err == nil {
			cursor = &v
		}
	}

	rows, err := fetch(ctx, Query{Cursor: cursor, Limit: req.PageSize + 1, Direction: req.Direction})
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: make([]T, 0, len(rows)), PageSize: req.PageSize}
	if len(rows) == 0 {
		return page, nil
	}

	if len(rows) > req.PageSize {
		page.HasNextPage = true
		rows = rows[:req.PageSize]
	}
	page.Items = append(page.Items, rows...)

	if page.HasNextPage {
		next, err := Encode(key(rows[len(rows)-1]))
		if err != nil {
			return nil, err
		}
		page.NextCursor = &next
	}

	if cursor != nil {
		page.HasPreviousPage = true
		prev, err := Encode(key(rows[0]))
		if err != nil {
			return nil, err
		}
		page.PreviousCursor = &prev
	}

	return page, nil
}
