package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID keys a page by its prefixed title so reseeding a store yields the
// same primary key.
func PageUUID(prefixedTitle string) uuid.UUID {
	return UUID("wikiparse:page:" + strings.TrimSpace(prefixedTitle))
}

// PagePropUUID keys a page property by page ID and property name.
func PagePropUUID(pageID int64, name string) uuid.UUID {
	return UUID("wikiparse:page_prop:" + strconv.FormatInt(pageID, 10) + ":" + strings.TrimSpace(name))
}
