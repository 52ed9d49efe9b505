// internal/core/query_params.go
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidQueryParam is wrapped by every parameter validation failure.
var ErrInvalidQueryParam = errors.New("invalid query parameter")

// Default and limit constants for pagination
const (
	DefaultLimit = 50
	MaxLimit     = 500
	DefaultOrder = "desc"
)

// HistoryQueryOptions holds parsed query parameters for listing query history.
type HistoryQueryOptions struct {
	// Pagination
	Limit  int
	Offset int

	// Sorting by creation time
	SortOrder string // "asc" or "desc"

	// Filters; nil/empty means "any"
	Success   *bool
	QueryType string
}

// ParseHistoryQueryOptions extracts pagination, ordering and filters from query parameters.
// Returns the parsed options and any validation error.
func ParseHistoryQueryOptions(queryParams url.Values) (*HistoryQueryOptions, error) {
	opts := &HistoryQueryOptions{
		Limit:     DefaultLimit,
		Offset:    0,
		SortOrder: DefaultOrder,
	}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("%w 'limit': must be an integer", ErrInvalidQueryParam)
		}
		if limit < 1 {
			return nil, fmt.Errorf("%w 'limit': must be at least 1", ErrInvalidQueryParam)
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("%w 'limit': maximum is %d", ErrInvalidQueryParam, MaxLimit)
		}
		opts.Limit = limit
	}

	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("%w 'offset': must be an integer", ErrInvalidQueryParam)
		}
		if offset < 0 {
			return nil, fmt.Errorf("%w 'offset': must be non-negative", ErrInvalidQueryParam)
		}
		opts.Offset = offset
	}

	if order := queryParams.Get("order"); order != "" {
		lowerOrder := strings.ToLower(order)
		if lowerOrder != "asc" && lowerOrder != "desc" {
			return nil, fmt.Errorf("%w 'order': must be 'asc' or 'desc'", ErrInvalidQueryParam)
		}
		opts.SortOrder = lowerOrder
	}

	if successStr := queryParams.Get("success"); successStr != "" {
		success, err := strconv.ParseBool(successStr)
		if err != nil {
			return nil, fmt.Errorf("%w 'success': must be true or false", ErrInvalidQueryParam)
		}
		opts.Success = &success
	}

	if queryType := queryParams.Get("type"); queryType != "" {
		upper := strings.ToUpper(queryType)
		if !knownQueryTypes[upper] && upper != "OTHER" {
			return nil, fmt.Errorf("%w 'type': '%s' is not a known statement type", ErrInvalidQueryParam, queryType)
		}
		opts.QueryType = upper
	}

	return opts, nil
}
