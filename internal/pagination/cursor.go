package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCursor is returned when a cursor string cannot be decoded.
// It is a client-input error, never a backend failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// SortKey is the position of a record in the global sort order:
// ascending created_at with the record uuid as tiebreaker. A decoded
// key is only a comparison bound, not a handle to a live record, so
// cursors stay valid after the record they came from is deleted.
type SortKey struct {
	CreatedAt time.Time
	UUID      uuid.UUID
}

// Less reports whether k sorts strictly before other.
func (k SortKey) Less(other SortKey) bool {
	if !k.CreatedAt.Equal(other.CreatedAt) {
		return k.CreatedAt.Before(other.CreatedAt)
	}
	return k.UUID.String() < other.UUID.String()
}

// EncodeCursor renders a sort key as an opaque cursor string.
func EncodeCursor(key SortKey) string {
	raw := key.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + key.UUID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor back into a sort key. Any structural
// problem (bad base64, wrong field count, unparseable timestamp or
// uuid) yields ErrInvalidCursor.
func DecodeCursor(cursor string) (SortKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return SortKey{}, fmt.Errorf("%w: %s", ErrInvalidCursor, "not base64url")
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 2 {
		return SortKey{}, fmt.Errorf("%w: %s", ErrInvalidCursor, "wrong structure")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return SortKey{}, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return SortKey{}, fmt.Errorf("%w: bad uuid", ErrInvalidCursor)
	}

	return SortKey{CreatedAt: createdAt, UUID: id}, nil
}
