package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := ProjectUUID("Acme")
	second := ProjectUUID("acme ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected normalized slugs to map to the same id, got %s and %s", first, second)
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestPageUUIDSeparatesLocales(t *testing.T) {
	project := ProjectUUID("acme")
	if PageUUID(project, "home", "en") == PageUUID(project, "home", "es") {
		t.Fatal("expected locale to participate in page identity")
	}
}

func TestReferenceFormat(t *testing.T) {
	id := uuid.MustParse("2f1f0f5e-8a9b-4c3d-9e8f-112233445566")
	ref := Reference("qr", id)
	if !strings.HasPrefix(ref, "QR-") || len(ref) != len("QR-")+10 {
		t.Fatalf("unexpected reference %q", ref)
	}
	if ref != Reference("qr", id) {
		t.Fatal("expected reference to be stable")
	}
	if strings.ToUpper(ref) != ref {
		t.Fatalf("expected upper-case reference, got %q", ref)
	}
}
