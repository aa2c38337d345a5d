// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"errors"
	"strings"
)

var ErrInvalidOrder = errors.New("invalid order_by value")

// Ordering describes the order_by values a list view accepts. Columns maps
// the public field name to the column it sorts by. A "-" prefix on the
// field means descending.
type Ordering struct {
	Columns  map[string]string
	Default  string
	Tiebreak string // Column appended to every clause to keep pages stable
}

// Resolve picks the effective ordering for a request. When toggle is set
// and the same value as the previous request is asked for again, the
// direction is reversed.
func (o Ordering) Resolve(requested, previous string, toggle bool) (string, error) {
	if requested == "" {
		return o.Default, nil
	}

	if _, ok := o.Columns[strings.TrimPrefix(requested, "-")]; !ok {
		return "", ErrInvalidOrder
	}

	if toggle && requested == previous {
		return Flip(requested), nil
	}

	return requested, nil
}

// Clause converts a resolved value into an ORDER BY clause
func (o Ordering) Clause(value string) string {
	field := strings.TrimPrefix(value, "-")

	col, ok := o.Columns[field]
	if !ok {
		col = o.Columns[strings.TrimPrefix(o.Default, "-")]
	}

	dir := " ASC"
	if strings.HasPrefix(value, "-") {
		dir = " DESC"
	}

	clause := col + dir
	if o.Tiebreak != "" && col != o.Tiebreak {
		clause += ", " + o.Tiebreak + " ASC"
	}

	return clause
}

// Links returns, for every sortable field, the order_by value a sort
// header should link to given the current ordering
func (o Ordering) Links(current string) map[string]string {
	out := make(map[string]string, len(o.Columns))
	for f := range o.Columns {
		out[f] = Toggle(current, f)
	}

	return out
}

// Toggle returns "-field" when the list is already sorted ascending by
// field, otherwise field
func Toggle(current, field string) string {
	if current == field {
		return "-" + field
	}

	return field
}

// Flip reverses the direction of an order_by value
func Flip(v string) string {
	if strings.HasPrefix(v, "-") {
		return v[1:]
	}

	return "-" + v
}
