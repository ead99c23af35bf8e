package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-sites:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
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

func ProjectUUID(slug string) uuid.UUID {
	return UUID(namespace + "project:" + strings.ToLower(strings.TrimSpace(slug)))
}

func PageUUID(projectID uuid.UUID, slug, locale string) uuid.UUID {
	return UUID(namespace + "page:" + projectID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)) + ":" + strings.ToLower(strings.TrimSpace(locale)))
}

func SectionUUID(pageID uuid.UUID, position int, identifier string) uuid.UUID {
	return UUID(namespace + "section:" + pageID.String() + ":" + strconv.Itoa(position) + ":" + strings.TrimSpace(identifier))
}

func FieldUUID(sectionID uuid.UUID, key string) uuid.UUID {
	return UUID(namespace + "field:" + sectionID.String() + ":" + strings.TrimSpace(key))
}

func NavigationItemUUID(projectID uuid.UUID, location, locale, label string) uuid.UUID {
	return UUID(namespace + "navigation:" + projectID.String() + ":" + strings.ToLower(location) + ":" + strings.ToLower(locale) + ":" + strings.TrimSpace(label))
}

// Reference renders a short, upper-case public code for an identifier. It is
// stable for a given UUID and is what visitors quote back on follow-ups.
func Reference(prefix string, id uuid.UUID) string {
	derived := UUID(namespace + "reference:" + id.String())
	code := strings.ToUpper(strings.ReplaceAll(derived.String(), "-", "")[:10])
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		return code
	}
	return strings.ToUpper(prefix) + "-" + code
}
