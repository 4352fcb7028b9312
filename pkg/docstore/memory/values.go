package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/docstore"
)

// timestampFields are the keys whose RFC 3339 strings are read back as
// time.Time. Any other string is kept verbatim.
var timestampFields = map[string]bool{"created_at": true, "updated_at": true}

// normalize converts arbitrary document data into the map form the store keeps.
// Timestamp fields are revived as time.Time so filters compare by instant.
func normalize(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("document must encode to an object: %w", err)
	}
	return revive(out).(map[string]any), nil
}

func normalizeValue(v any) (any, error) {
	if ts, ok := v.(time.Time); ok {
		return ts, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return revive(out), nil
}

func revive(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if s, ok := inner.(string); ok && timestampFields[k] {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					t[k] = ts
					continue
				}
			}
			t[k] = revive(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = revive(inner)
		}
		return t
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}

func lookup(data map[string]any, field string) (any, bool) {
	parts := strings.Split(field, ".")
	var cur any = data
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func assign(data map[string]any, field string, value any) error {
	parts := strings.Split(field, ".")
	cur := data
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok {
			m := map[string]any{}
			cur[p] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not a map", p)
		}
		cur = m
	}
	last := parts[len(parts)-1]

	if inc, ok := value.(docstore.Increment); ok {
		existing, _ := toFloat(cur[last])
		cur[last] = existing + float64(inc)
		return nil
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}
	cur[last] = normalized
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case docstore.Increment:
		return float64(n), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		return ts, err == nil
	}
	return time.Time{}, false
}

// compare orders two values of the same kind. ok is false when the values
// are not comparable, in which case no range filter matches.
func compare(a, b any) (result int, ok bool) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		return cmpOrdered(af, bf), true
	}
	if at, aok := a.(time.Time); aok {
		bt, bok := toTime(b)
		if !bok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	if as, aok := a.(string); aok {
		if bt, bok := b.(time.Time); bok {
			at, tok := toTime(as)
			if !tok {
				return 0, false
			}
			return at.Compare(bt), true
		}
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		if !bok {
			return 0, false
		}
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func cmpOrdered[T float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func matches(data map[string]any, f docstore.Filter) bool {
	value, ok := lookup(data, f.Field)
	if !ok {
		return false
	}
	if f.Op == docstore.OpEqual {
		for _, want := range f.Values {
			if c, ok := compare(value, want); ok && c == 0 {
				return true
			}
		}
		return false
	}
	c, ok := compare(value, f.Value())
	if !ok {
		return false
	}
	switch f.Op {
	case docstore.OpGreater:
		return c > 0
	case docstore.OpGreaterOrEqual:
		return c >= 0
	case docstore.OpLess:
		return c < 0
	case docstore.OpLessOrEqual:
		return c <= 0
	}
	return false
}
