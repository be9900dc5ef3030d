package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when a list request does not name a page size
	DefaultPageSize = 20
	// MaxPageSize is the maximum allowed page size for paginated queries
	MaxPageSize = 200
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string // API field name
	Order SortOrder
}

// DefaultSortConfig sorts by most recently updated
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: "updatedAt", Order: SortOrderDesc}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause maps an API sort field to a whitelisted column.
// Unknown fields fall back to defaultColumn.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}
	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}
	return column + " " + order
}

// ListOptions are the paging, search and sort parameters shared by list endpoints
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Sort     SortConfig
}

// Normalize clamps page and page size into their valid ranges
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.Sort.Field == "" {
		o.Sort = DefaultSortConfig()
	}
}

// Offset returns the number of rows to skip
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}

// searchPattern lowercases a term for LIKE matching
func searchPattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// paginate counts the filtered rows and loads one page of them. Preloads are
// applied to the page query only.
func paginate(query *gorm.DB, opts ListOptions, sortable map[string]string, defaultColumn string, dest interface{}, preloads ...string) (int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	for _, p := range preloads {
		query = query.Preload(p)
	}
	err := query.
		Order(BuildOrderClause(opts.Sort, sortable, defaultColumn)).
		Offset(opts.Offset()).
		Limit(opts.PageSize).
		Find(dest).Error
	return total, err
}

// deleteByID removes one row and reports gorm.ErrRecordNotFound when nothing matched
func deleteByID(db *gorm.DB, model interface{}, id interface{}) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
