package condition

import (
	"strings"

	"github.com/go-faster/errors"
)

// Persisted operator symbols. The LIKE family is stored as LIKE / NOT LIKE
// with the match kind encoded by % wildcard placement in the value:
// %v% contains, v% starts-with, %v ends-with.
const (
	storedLike    = "LIKE"
	storedNotLike = "NOT LIKE"
)

// ParseStored decodes a persisted (operator, value) pair into the in-memory
// operator and the bare value with wildcards stripped.
func ParseStored(op, value string) (Operator, string, error) {
	switch op {
	case storedLike, storedNotLike:
		kind, bare := likeKind(value)
		if op == storedNotLike {
			// NOT LIKE only carries not-contains semantics; prefix and
			// suffix negations are not part of the stored contract.
			return OpNotContains, bare, nil
		}
		return kind, bare, nil
	}

	o := Operator(op)
	if !o.Known() {
		return "", "", errors.Errorf("unknown operator %q", op)
	}
	return o, value, nil
}

// EncodeStored is the inverse of ParseStored: it returns the persisted
// operator symbol and value for the given in-memory pair.
func EncodeStored(op Operator, value string) (string, string) {
	switch op {
	case OpContains:
		return storedLike, "%" + value + "%"
	case OpNotContains:
		return storedNotLike, "%" + value + "%"
	case OpStartsWith:
		return storedLike, value + "%"
	case OpEndsWith:
		return storedLike, "%" + value
	}
	return string(op), value
}

// likeKind classifies a LIKE pattern by its wildcard placement and strips
// the wildcards.
func likeKind(pattern string) (Operator, string) {
	leading := strings.HasPrefix(pattern, "%")
	trailing := strings.HasSuffix(pattern, "%")
	bare := strings.Trim(pattern, "%")

	switch {
	case leading && !trailing:
		return OpEndsWith, bare
	case !leading && trailing:
		return OpStartsWith, bare
	default:
		return OpContains, bare
	}
}
