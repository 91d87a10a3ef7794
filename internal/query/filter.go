package query

import (
	"fmt"
	"time"
)

// FilterKind enumerates the supported list filters.
type FilterKind int

const (
	FilterStatus FilterKind = iota + 1
	FilterUser
	FilterCreatedAtMin
	FilterCreatedAtMax
	FilterUpdatedAtMin
	FilterUpdatedAtMax
)

func (k FilterKind) String() string {
	switch k {
	case FilterStatus:
		return "status"
	case FilterUser:
		return "user"
	case FilterCreatedAtMin:
		return "created_at_min"
	case FilterCreatedAtMax:
		return "created_at_max"
	case FilterUpdatedAtMin:
		return "updated_at_min"
	case FilterUpdatedAtMax:
		return "updated_at_max"
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// Filter is one present filter. Which value field is set depends on Kind.
type Filter struct {
	Kind    FilterKind
	Strings []string
	Ints    []int64
	Time    time.Time
}

// Predicate is a single where condition in gendry form: Key is the column
// plus operator ("status in", "created_at >="), Value its argument.
type Predicate struct {
	Key   string
	Value interface{}
}

// List returns the present filters in a fixed order. Empty lists and nil
// bounds are skipped.
func (f Filters) List() []Filter {
	var out []Filter
	if len(f.Status) > 0 {
		out = append(out, Filter{Kind: FilterStatus, Strings: f.Status})
	}
	if len(f.User) > 0 {
		out = append(out, Filter{Kind: FilterUser, Ints: f.User})
	}
	bounds := []struct {
		kind FilterKind
		t    *time.Time
	}{
		{FilterCreatedAtMin, f.CreatedAtMin},
		{FilterCreatedAtMax, f.CreatedAtMax},
		{FilterUpdatedAtMin, f.UpdatedAtMin},
		{FilterUpdatedAtMax, f.UpdatedAtMax},
	}
	for _, b := range bounds {
		if b.t != nil {
			out = append(out, Filter{Kind: b.kind, Time: *b.t})
		}
	}
	return out
}

// Predicate builds the condition for a single filter. ok is false when the
// filter carries no value.
func (f Filter) Predicate() (Predicate, bool) {
	switch f.Kind {
	case FilterStatus:
		return membership("status", stringValues(f.Strings))
	case FilterUser:
		return membership("user_id", intValues(f.Ints))
	case FilterCreatedAtMin:
		return rangeBound("created_at", ">=", f.Time)
	case FilterCreatedAtMax:
		return rangeBound("created_at", "<=", f.Time)
	case FilterUpdatedAtMin:
		return rangeBound("updated_at", ">=", f.Time)
	case FilterUpdatedAtMax:
		return rangeBound("updated_at", "<=", f.Time)
	}
	return Predicate{}, false
}

// Compile ANDs every present filter into a gendry where map. A non-zero
// scopeUserID restricts rows to that owner; a user filter is intersected with
// it here since gendry keeps one condition per column and operator. ok is
// false when the filters cannot match any row.
func Compile(filters []Filter, scopeUserID int64) (where map[string]interface{}, ok bool) {
	where = make(map[string]interface{}, len(filters)+1)
	for _, f := range filters {
		if scopeUserID != 0 && f.Kind == FilterUser {
			if !containsInt(f.Ints, scopeUserID) {
				return nil, false
			}
			continue
		}
		p, present := f.Predicate()
		if !present {
			continue
		}
		where[p.Key] = p.Value
	}
	if scopeUserID != 0 {
		where["user_id"] = scopeUserID
	}
	return where, true
}

func containsInt(values []int64, v int64) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func membership(column string, values []interface{}) (Predicate, bool) {
	switch len(values) {
	case 0:
		return Predicate{}, false
	case 1:
		return Predicate{Key: column, Value: values[0]}, true
	}
	return Predicate{Key: column + " in", Value: values}, true
}

func rangeBound(column, op string, t time.Time) (Predicate, bool) {
	if t.IsZero() {
		return Predicate{}, false
	}
	return Predicate{Key: column + " " + op, Value: t.UnixMilli()}, true
}

func stringValues(in []string) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}

func intValues(in []int64) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}
