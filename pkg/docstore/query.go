package docstore

// Op is a comparison operator in Firestore notation.
type Op string

const (
	OpEqual          Op = "=="
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
)

// Filter matches Field against Values. More than one value is an OR of
// equalities; comparison operators use only the first value.
type Filter struct {
	Field  string
	Op     Op
	Values []any
}

// Value returns the first operand.
func (f Filter) Value() any {
	if len(f.Values) == 0 {
		return nil
	}
	return f.Values[0]
}

// IsOr reports whether the filter is a disjunction of equalities.
func (f Filter) IsOr() bool {
	return f.Op == OpEqual && len(f.Values) > 1
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

type Order struct {
	Field     string
	Direction Direction
}

type BoundKind int

const (
	StartAt BoundKind = iota
	StartAfter
	EndAt
	EndBefore
)

func (k BoundKind) String() string {
	switch k {
	case StartAt:
		return "start_at"
	case StartAfter:
		return "start_after"
	case EndAt:
		return "end_at"
	case EndBefore:
		return "end_before"
	}
	return "unknown"
}

// Bound is a cursor value applied against the first order field.
type Bound struct {
	Kind  BoundKind
	Value any
}

// Query is an immutable query description. Builder methods return copies.
type Query struct {
	Collection string
	Group      bool
	Filters    []Filter
	Orders     []Order
	Bounds     []Bound
	Limit      int
}

// Collection targets the documents directly under path.
func Collection(path string) Query {
	return Query{Collection: path}
}

// CollectionGroup targets every collection with the given id, at any depth.
func CollectionGroup(id string) Query {
	return Query{Collection: id, Group: true}
}

func (q Query) clone() Query {
	out := q
	out.Filters = append([]Filter(nil), q.Filters...)
	out.Orders = append([]Order(nil), q.Orders...)
	out.Bounds = append([]Bound(nil), q.Bounds...)
	return out
}

func (q Query) Where(field string, op Op, values ...any) Query {
	out := q.clone()
	out.Filters = append(out.Filters, Filter{Field: field, Op: op, Values: values})
	return out
}

func (q Query) OrderBy(field string, dir Direction) Query {
	out := q.clone()
	out.Orders = append(out.Orders, Order{Field: field, Direction: dir})
	return out
}

func (q Query) WithBound(kind BoundKind, value any) Query {
	out := q.clone()
	out.Bounds = append(out.Bounds, Bound{Kind: kind, Value: value})
	return out
}

func (q Query) WithLimit(n int) Query {
	out := q.clone()
	out.Limit = n
	return out
}
