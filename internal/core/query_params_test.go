package core

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseHistoryQueryOptionsDefaults(t *testing.T) {
	opts, err := ParseHistoryQueryOptions(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Limit != DefaultLimit || opts.Offset != 0 || opts.SortOrder != DefaultOrder {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.Success != nil || opts.QueryType != "" {
		t.Errorf("filters should be unset: %+v", opts)
	}
}

func TestParseHistoryQueryOptions(t *testing.T) {
	opts, err := ParseHistoryQueryOptions(url.Values{
		"limit":   {"10"},
		"offset":  {"20"},
		"order":   {"ASC"},
		"success": {"false"},
		"type":    {"select"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Limit != 10 || opts.Offset != 20 || opts.SortOrder != "asc" {
		t.Errorf("unexpected paging: %+v", opts)
	}
	if opts.Success == nil || *opts.Success {
		t.Errorf("success filter not parsed: %+v", opts.Success)
	}
	if opts.QueryType != "SELECT" {
		t.Errorf("type filter = %q", opts.QueryType)
	}
}

func TestParseHistoryQueryOptionsErrors(t *testing.T) {
	testCases := []url.Values{
		{"limit": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"100000"}},
		{"offset": {"-1"}},
		{"order": {"sideways"}},
		{"success": {"maybe"}},
		{"type": {"GRANT"}},
	}
	for _, params := range testCases {
		if _, err := ParseHistoryQueryOptions(params); !errors.Is(err, ErrInvalidQueryParam) {
			t.Errorf("ParseHistoryQueryOptions(%v) = %v, want ErrInvalidQueryParam", params, err)
		}
	}
}
