// Package query translates the string-encoded sort specification and
// offset/limit parameters into a descriptor the persistence store can
// consume.
package query

import (
	"strings"

	"github.com/antonio-alexander/go-employee-directory/internal/validate"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Order is a single sort key; a listing carries them in priority
// order, the first being the primary key.
type Order struct {
	Field     string
	Direction Direction
}

// PageRequest is either an offset-based window or an unpaged-but-sorted
// request for the full result set.
type PageRequest struct {
	Offset  int
	Limit   int
	Orders  []Order
	Unpaged bool
}

// Builder validates sort specifications against a statically declared
// set of legal field names.
type Builder struct {
	fields []string
}

func NewBuilder(fields ...string) *Builder {
	return &Builder{fields: fields}
}

// ParseSort parses a comma-separated list of field[-direction] tokens;
// token order is preserved as sort-key priority and any direction other
// than asc/desc (case-insensitive) defaults to ascending.
func (b *Builder) ParseSort(spec string) ([]Order, error) {
	var orders []Order

	for _, token := range strings.Split(spec, ",") {
		segments := strings.Split(token, "-")
		field := segments[0]
		if err := validate.SortField(field, b.fields); err != nil {
			return nil, err
		}
		direction := Ascending
		if len(segments) == 2 && strings.EqualFold(segments[1], string(Descending)) {
			direction = Descending
		}
		orders = append(orders, Order{Field: field, Direction: direction})
	}
	return orders, nil
}

// Build produces an offset-based page when limit is positive and an
// unpaged-but-sorted request otherwise.
func (b *Builder) Build(offset, limit int, sortSpec string) (*PageRequest, error) {
	orders, err := b.ParseSort(sortSpec)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		return &PageRequest{Offset: offset, Limit: limit, Orders: orders}, nil
	}
	return &PageRequest{Orders: orders, Unpaged: true}, nil
}
