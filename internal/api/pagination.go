package api

import (
	"net/url"
	"strconv"
)

const maxPageSize = 100

type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// parsePagination reads page/page_size query params.
// page defaults to 1, page_size to defaultSize and is capped at 100.
func parsePagination(q url.Values, defaultSize int) (int, int, []ErrorDetail) {
	page, size := 1, defaultSize
	var details []ErrorDetail

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, ErrorDetail{Field: "page", Message: "must be a positive integer"})
		} else {
			page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, ErrorDetail{Field: "page_size", Message: "must be a positive integer"})
		} else {
			size = n
		}
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if size < 1 {
		size = 1
	}
	return page, size, details
}
