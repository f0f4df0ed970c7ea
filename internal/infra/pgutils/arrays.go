package pgutils

import "github.com/google/uuid"

// UUIDStrings renders ids for a `$1::text[]::uuid[]` parameter.
func UUIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}
