package delivery

import (
	"fmt"
	"strings"
)

// Category identifies the kind of payload being delivered.
// It is the partition key for rate limiting and outcome reporting.
type Category string

const (
	CategoryError       Category = "error"
	CategoryTransaction Category = "transaction"
	CategorySession     Category = "session"
	CategoryAttachment  Category = "attachment"

	// CategoryAll is the wildcard rate-limit key. It is never a payload category.
	CategoryAll Category = "all"
)

// Categories lists every payload category in a stable order.
var Categories = []Category{
	CategoryError,
	CategoryTransaction,
	CategorySession,
	CategoryAttachment,
}

// aliases maps legacy request type names onto categories.
var aliases = map[string]Category{
	"event":    CategoryError,
	"sessions": CategorySession,
}

// String returns the wire name of the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the payload categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryError, CategoryTransaction, CategorySession, CategoryAttachment:
		return true
	}
	return false
}

// Trackable reports whether c may be stored as a rate-limit key,
// that is a payload category or the wildcard.
func (c Category) Trackable() bool {
	return c == CategoryAll || c.Valid()
}

// ParseCategory converts a name into a payload category.
// The legacy names "event" and "sessions" are accepted.
func ParseCategory(name string) (Category, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if c := Category(n); c.Valid() {
		return c, nil
	}
	if c, ok := aliases[n]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
