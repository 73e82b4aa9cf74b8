package repositories

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/bazzarna/storefront/internal/domain"
)

// ErrInvalidQuery is returned by ProductQuery.Validate for unsupported fields, operators or limits.
var ErrInvalidQuery = errors.New("product query: invalid")

// QueryField names a product column a typed query may filter or order on.
type QueryField string

const (
	FieldID         QueryField = "id"
	FieldCategoryID QueryField = "category_id"
	FieldBrand      QueryField = "brand"
	FieldCreatedAt  QueryField = "created_at"
)

// QueryOp is a comparison operator.
type QueryOp string

const (
	OpEq  QueryOp = "eq"
	OpNeq QueryOp = "neq"
)

// QueryFilter is one predicate. Filters in a query are ANDed.
type QueryFilter struct {
	Field QueryField
	Op    QueryOp
	Value string
}

// QueryOrder orders results by a field.
type QueryOrder struct {
	Field QueryField
	Desc  bool
}

// ProductQuery is a small value object describing a catalogue read: filters, ordering, limit.
// A zero Limit means unbounded.
type ProductQuery struct {
	Filters []QueryFilter
	OrderBy *QueryOrder
	Limit   int
}

// NewProductQuery returns an empty query.
func NewProductQuery() ProductQuery {
	return ProductQuery{}
}

// Where adds an equality filter.
func (q ProductQuery) Where(field QueryField, value string) ProductQuery {
	return q.with(QueryFilter{Field: field, Op: OpEq, Value: value})
}

// Not adds an inequality filter.
func (q ProductQuery) Not(field QueryField, value string) ProductQuery {
	return q.with(QueryFilter{Field: field, Op: OpNeq, Value: value})
}

// NewestFirst orders by created_at descending.
func (q ProductQuery) NewestFirst() ProductQuery {
	q.OrderBy = &QueryOrder{Field: FieldCreatedAt, Desc: true}
	return q
}

// WithLimit caps the number of results.
func (q ProductQuery) WithLimit(n int) ProductQuery {
	q.Limit = n
	return q
}

func (q ProductQuery) with(filter QueryFilter) ProductQuery {
	filters := make([]QueryFilter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, filter)
	return q
}

// Validate rejects fields and operators the executors do not understand.
func (q ProductQuery) Validate() error {
	for i, f := range q.Filters {
		switch f.Field {
		case FieldID, FieldCategoryID, FieldBrand:
		default:
			return fmt.Errorf("%w: filter %d: unsupported field %q", ErrInvalidQuery, i, f.Field)
		}
		switch f.Op {
		case OpEq, OpNeq:
		default:
			return fmt.Errorf("%w: filter %d: unsupported operator %q", ErrInvalidQuery, i, f.Op)
		}
	}
	if q.OrderBy != nil && q.OrderBy.Field != FieldCreatedAt {
		return fmt.Errorf("%w: unsupported order field %q", ErrInvalidQuery, q.OrderBy.Field)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// Matches evaluates the filters against p. Used by in-process executors.
func (q ProductQuery) Matches(p domain.Product) bool {
	for _, f := range q.Filters {
		actual := fieldValue(p, f.Field)
		equal := actual == f.Value
		if f.Op == OpEq && !equal {
			return false
		}
		if f.Op == OpNeq && equal {
			return false
		}
	}
	return true
}

// String renders the query for logs.
func (q ProductQuery) String() string {
	var b strings.Builder
	b.WriteString("products")
	for _, f := range q.Filters {
		fmt.Fprintf(&b, " %s.%s(%s)", f.Field, f.Op, f.Value)
	}
	if q.OrderBy != nil {
		dir := "asc"
		if q.OrderBy.Desc {
			dir = "desc"
		}
		fmt.Fprintf(&b, " order(%s %s)", q.OrderBy.Field, dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " limit(%d)", q.Limit)
	}
	return b.String()
}

func fieldValue(p domain.Product, field QueryField) string {
	switch field {
	case FieldID:
		return p.ID
	case FieldCategoryID:
		return p.CategoryID
	case FieldBrand:
		return p.Brand
	default:
		return ""
	}
}
