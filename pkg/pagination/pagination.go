package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Cursor marks the last row of the previous page in a newest-first listing.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

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

// EncodeCursor builds an opaque cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. A blank value is
// the first page and yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{CreatedAt: t, ID: parts[1]}, nil
}

// Before reports whether (createdAt, id) sorts after the cursor in newest-first order,
// ties on createdAt broken by descending id.
func (c Cursor) Before(createdAt time.Time, id string) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return id < c.ID
}

// Page slices a newest-first list after cursor and returns the next cursor when more
// rows remain. key extracts each row's sort key.
func Page[T any](rows []T, cursor *Cursor, limit int, key func(T) (time.Time, string)) ([]T, string) {
	limit = NormalizeLimit(limit)

	start := 0
	if cursor != nil {
		start = len(rows)
		for i, row := range rows {
			createdAt, id := key(row)
			if cursor.Before(createdAt, id) {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end >= len(rows) {
		return rows[start:], ""
	}
	createdAt, id := key(rows[end-1])
	return rows[start:end], EncodeCursor(Cursor{CreatedAt: createdAt, ID: id})
}
