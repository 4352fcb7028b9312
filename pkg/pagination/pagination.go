package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided or is unusable.
	DefaultLimit = 20
	// MaxLimit caps how many documents any list query can request.
	MaxLimit = 100
)

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
