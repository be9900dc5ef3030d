package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListOptions_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       ListOptions
		page     int
		pageSize int
	}{
		{"zero values", ListOptions{}, 1, DefaultPageSize},
		{"negative page", ListOptions{Page: -3, PageSize: 10}, 1, 10},
		{"too large", ListOptions{Page: 2, PageSize: 5000}, 2, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.in
			opts.Normalize()
			assert.Equal(t, tt.page, opts.Page)
			assert.Equal(t, tt.pageSize, opts.PageSize)
			assert.Equal(t, DefaultSortConfig(), opts.Sort)
		})
	}
}

func TestListOptions_Offset(t *testing.T) {
	opts := ListOptions{Page: 3, PageSize: 20}
	assert.Equal(t, 40, opts.Offset())
}

func TestBuildOrderClause(t *testing.T) {
	fields := map[string]string{"number": "number", "total": "total"}

	assert.Equal(t, "number ASC", BuildOrderClause(SortConfig{Field: "number", Order: SortOrderAsc}, fields, "updated_at"))
	assert.Equal(t, "total DESC", BuildOrderClause(SortConfig{Field: "total", Order: SortOrderDesc}, fields, "updated_at"))
	// unknown fields never reach the query
	assert.Equal(t, "updated_at DESC", BuildOrderClause(SortConfig{Field: "1; DROP TABLE quotes", Order: SortOrderDesc}, fields, "updated_at"))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortOrderAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortOrderAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortOrderDesc, ParseSortOrder(""))
	assert.Equal(t, SortOrderDesc, ParseSortOrder("sideways"))
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "%bandera%", searchPattern("  Bandera "))
}
