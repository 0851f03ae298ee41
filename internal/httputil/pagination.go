package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tasks/internal/errors"
	"github.com/allisson/tasks/internal/pagination"
)

// ParseCursorPagination reads the cursor, page_size and direction query
// parameters. Out of range page sizes are clamped by Request.Normalize; a
// page_size that is not an integer or an unknown direction is invalid input.
func ParseCursorPagination(c *gin.Context) (pagination.Request, error) {
	req := pagination.Request{Cursor: c.Query("cursor")}

	if raw := c.Query("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Request{}, apperrors.Wrap(
				apperrors.ErrInvalidInput,
				"invalid page_size parameter: must be an integer",
			)
		}
		req.PageSize = pageSize
	}

	direction, err := pagination.ParseDirection(c.Query("direction"))
	if err != nil {
		return pagination.Request{}, err
	}
	req.Direction = direction

	return req.Normalize(), nil
}

// PageResponse is the JSON shape of a cursor page.
type PageResponse[T any] struct {
	Items           []T     `json:"items"`
	NextCursor      *string `json:"next_cursor"`
	PreviousCursor  *string `json:"previous_cursor"`
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
	PageSize        int     `json:"page_size"`
}

// NewPageResponse maps every item of page with fn.
func NewPageResponse[S, T any](page *pagination.Page[S], fn func(S) T) PageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}

	return PageResponse[T]{
		Items:           items,
		NextCursor:      page.NextCursor,
		PreviousCursor:  page.PreviousCursor,
		HasNextPage:     page.HasNextPage,
		HasPreviousPage: page.HasPreviousPage,
		PageSize:        page.PageSize,
	}
}
