// Package querybuilder compiles list-endpoint query strings into docstore queries.
//
// Grammar, one rule per token class:
//
//	key=v                 equality
//	key=v1,v2 | key=v1&key=v2   OR of equalities
//	key=op:value          comparison, op in gt|gte|lt|lte
//	order=field[:desc]    sort, repeatable, kept in declaration order
//	limit=n               page size, 20 when missing or unusable
//	start_at|start_after|end_at|end_before=value   cursor bounds
//
// Comparison values on created_at and updated_at are parsed as timestamps.
package querybuilder

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	keyOrder      = "order"
	keyLimit      = "limit"
	keyStartAt    = "start_at"
	keyStartAfter = "start_after"
	keyEndAt      = "end_at"
	keyEndBefore  = "end_before"
)

var comparisonOps = map[string]docstore.Op{
	"gt":  docstore.OpGreater,
	"gte": docstore.OpGreaterOrEqual,
	"lt":  docstore.OpLess,
	"lte": docstore.OpLessOrEqual,
}

var timestampFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

// Bounds holds cursor values; nil means unset.
type Bounds struct {
	StartAt    any
	StartAfter any
	EndAt      any
	EndBefore  any
}

// Spec is the compiled form of a query string.
type Spec struct {
	Filters []docstore.Filter
	Orders  []docstore.Order
	Bounds  Bounds
	Limit   int
}

// Default is the spec used when a caller supplies no query.
func Default() *Spec {
	return &Spec{Limit: pagination.DefaultLimit}
}

// Parse compiles values. Keys are visited in sorted order so the output is deterministic.
func Parse(values url.Values) *Spec {
	spec := Default()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vs := values[key]
		if len(vs) == 0 {
			continue
		}
		switch key {
		case keyOrder:
			spec.Orders = append(spec.Orders, parseOrders(vs)...)
		case keyLimit:
			spec.Limit = parseLimit(vs[len(vs)-1])
		case keyStartAt:
			spec.Bounds.StartAt = parseCursorValue(vs[len(vs)-1])
		case keyStartAfter:
			spec.Bounds.StartAfter = parseCursorValue(vs[len(vs)-1])
		case keyEndAt:
			spec.Bounds.EndAt = parseCursorValue(vs[len(vs)-1])
		case keyEndBefore:
			spec.Bounds.EndBefore = parseCursorValue(vs[len(vs)-1])
		default:
			if f, ok := parseFilter(key, vs); ok {
				spec.Filters = append(spec.Filters, f)
			}
		}
	}
	return spec
}

func parseFilter(key string, vs []string) (docstore.Filter, bool) {
	if len(vs) > 1 {
		return orFilter(key, vs), true
	}
	raw := vs[0]
	if strings.Contains(raw, ",") {
		return orFilter(key, strings.Split(raw, ",")), true
	}
	if opToken, operand, found := strings.Cut(raw, ":"); found {
		return parseComparison(key, opToken, operand)
	}
	return docstore.Filter{Field: key, Op: docstore.OpEqual, Values: []any{raw}}, true
}

func orFilter(key string, raw []string) docstore.Filter {
	values := make([]any, 0, len(raw))
	for _, v := range raw {
		values = append(values, v)
	}
	return docstore.Filter{Field: key, Op: docstore.OpEqual, Values: values}
}

// parseComparison drops the filter when the operator is unknown or the operand unusable.
func parseComparison(key, opToken, operand string) (docstore.Filter, bool) {
	op, ok := comparisonOps[opToken]
	if !ok || operand == "" {
		return docstore.Filter{}, false
	}
	if timestampFields[key] {
		ts, ok := parseTimestamp(operand)
		if !ok {
			return docstore.Filter{}, false
		}
		return docstore.Filter{Field: key, Op: op, Values: []any{ts}}, true
	}
	return docstore.Filter{Field: key, Op: op, Values: []any{parseQueryValue(operand)}}, true
}

func parseOrders(vs []string) []docstore.Order {
	out := make([]docstore.Order, 0, len(vs))
	for _, v := range vs {
		field, dir, _ := strings.Cut(v, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		direction := docstore.Asc
		if strings.EqualFold(strings.TrimSpace(dir), "desc") {
			direction = docstore.Desc
		}
		out = append(out, docstore.Order{Field: field, Direction: direction})
	}
	return out
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return pagination.DefaultLimit
	}
	return pagination.NormalizeLimit(n)
}

func parseNumber(raw string) (any, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func parseQueryValue(raw string) any {
	if n, ok := parseNumber(raw); ok {
		return n
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func parseCursorValue(raw string) any {
	if n, ok := parseNumber(raw); ok {
		return n
	}
	return raw
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Apply appends filters, then orders, then cursor bounds, then the limit.
// start_at takes precedence over start_after and end_at over end_before.
func (s *Spec) Apply(base docstore.Query) docstore.Query {
	if s == nil {
		s = Default()
	}
	q := base
	for _, f := range s.Filters {
		q = q.Where(f.Field, f.Op, f.Values...)
	}
	for _, o := range s.Orders {
		q = q.OrderBy(o.Field, o.Direction)
	}
	switch {
	case s.Bounds.StartAt != nil:
		q = q.WithBound(docstore.StartAt, s.Bounds.StartAt)
	case s.Bounds.StartAfter != nil:
		q = q.WithBound(docstore.StartAfter, s.Bounds.StartAfter)
	}
	switch {
	case s.Bounds.EndAt != nil:
		q = q.WithBound(docstore.EndAt, s.Bounds.EndAt)
	case s.Bounds.EndBefore != nil:
		q = q.WithBound(docstore.EndBefore, s.Bounds.EndBefore)
	}
	return q.WithLimit(pagination.NormalizeLimit(s.Limit))
}
