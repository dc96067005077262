package models

import (
	"fmt"
	"strings"
)

// EmploymentFilter restricts a query by the full-stack flag.
type EmploymentFilter int

const (
	EmploymentAll EmploymentFilter = iota
	EmploymentFullStack
	EmploymentOther
)

func (f EmploymentFilter) String() string {
	switch f {
	case EmploymentFullStack:
		return "fullstack"
	case EmploymentOther:
		return "other"
	default:
		return "all"
	}
}

// FullStack returns the flag value to filter on, or nil for EmploymentAll.
func (f EmploymentFilter) FullStack() *bool {
	var v bool
	switch f {
	case EmploymentFullStack:
		v = true
	case EmploymentOther:
		v = false
	default:
		return nil
	}
	return &v
}

// ParseEmploymentFilter accepts "all", "fullstack"/"true" and "other"/"false".
func ParseEmploymentFilter(s string) (EmploymentFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return EmploymentAll, nil
	case "fullstack", "true":
		return EmploymentFullStack, nil
	case "other", "false":
		return EmploymentOther, nil
	default:
		return EmploymentAll, fmt.Errorf("unknown employment filter %q", s)
	}
}

// Query is the paging and filtering state of a list request. Pages are
// numbered from 0.
type Query struct {
	Page       int
	Size       int
	Name       string
	Employment EmploymentFilter
}

// Matches applies the query filters to a single record: a case-insensitive
// substring match on the name and an exact match on the full-stack flag.
func (q Query) Matches(d Developer) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(q.Name)) {
		return false
	}
	if fs := q.Employment.FullStack(); fs != nil && d.FullStack != *fs {
		return false
	}
	return true
}

// Filter returns the records of list matching q, preserving order.
func (q Query) Filter(list []Developer) []Developer {
	out := make([]Developer, 0, len(list))
	for _, d := range list {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
