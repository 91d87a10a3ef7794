// Package query turns list request query strings into paging, ordering and
// filter values, and compiles filters into gendry where conditions.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	DefaultSortBy = "id"
	OrderAsc      = "asc"
	OrderDesc     = "desc"
)

var sortFields = map[string]struct{}{
	"id":         {},
	"title":      {},
	"created_at": {},
	"updated_at": {},
}

type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Offset() uint {
	return uint(p.Page-1) * uint(p.PageSize)
}

func (p Pagination) Limit() uint {
	return uint(p.PageSize)
}

type Sort struct {
	Field string
	Order string
}

// OrderBy renders the gendry _orderby value. id breaks ties so pages do not
// overlap when the sort field repeats.
func (s Sort) OrderBy() string {
	if s.Field == "id" {
		return "id " + s.Order
	}
	return s.Field + " " + s.Order + ", id " + s.Order
}

type Filters struct {
	Status       []string
	User         []int64
	CreatedAtMin *time.Time
	CreatedAtMax *time.Time
	UpdatedAtMin *time.Time
	UpdatedAtMax *time.Time
}

type ListParams struct {
	Pagination
	Sort    Sort
	Filters Filters
}

// Parse reads everything the todo list endpoint understands. It never fails:
// bad values fall back to defaults or are dropped. maxPageSize > 0 caps the
// page size.
func Parse(values url.Values, maxPageSize int) ListParams {
	p := ListParams{
		Pagination: ParsePagination(values),
		Sort:       ParseSort(values),
		Filters:    ParseFilters(values),
	}
	if maxPageSize > 0 && p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func ParsePagination(values url.Values) Pagination {
	return Pagination{
		Page:     positiveInt(values.Get("page"), DefaultPage),
		PageSize: positiveInt(values.Get("pageSize"), DefaultPageSize),
	}
}

func ParseSort(values url.Values) Sort {
	s := Sort{Field: DefaultSortBy, Order: OrderAsc}
	if field := strings.TrimSpace(values.Get("sort_by")); field != "" {
		if _, ok := sortFields[field]; ok {
			s.Field = field
		}
	}
	switch strings.ToLower(strings.TrimSpace(values.Get("order"))) {
	case OrderAsc:
		return s
	case OrderDesc:
		s.Order = OrderDesc
		return s
	}
	if flag, err := strconv.ParseBool(strings.TrimSpace(values.Get("desc"))); err == nil && flag {
		s.Order = OrderDesc
	}
	return s
}

func ParseFilters(values url.Values) Filters {
	return Filters{
		Status:       splitStrings(values.Get("status")),
		User:         splitInts(values.Get("user")),
		CreatedAtMin: parseTime(values.Get("created_at_min")),
		CreatedAtMax: parseTime(values.Get("created_at_max")),
		UpdatedAtMin: parseTime(values.Get("updated_at_min")),
		UpdatedAtMax: parseTime(values.Get("updated_at_max")),
	}
}

func positiveInt(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func splitStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitInts(raw string) []int64 {
	var out []int64
	for _, part := range splitStrings(raw) {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func parseTime(raw string) *time.Time {
	t, ok := timeutil.ParseISO(raw)
	if !ok {
		return nil
	}
	return &t
}
