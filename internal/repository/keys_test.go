package repository

import (
	"strings"
	"testing"
)

// Idempotency and status records share one Redis instance; their prefixes
// must stay disjoint so TTL semantics never collide.
func TestKeyNamespacesAreDisjoint(t *testing.T) {
	idem := idemKey("r1")
	status := statusKey("r1")

	if idem == status {
		t.Fatalf("key collision: %q", idem)
	}
	if !strings.HasPrefix(idem, "idem:") {
		t.Errorf("idempotency key = %q, want idem: prefix", idem)
	}
	if !strings.HasPrefix(status, "notify:status:") {
		t.Errorf("status key = %q, want notify:status: prefix", status)
	}
	if strings.HasPrefix(idem, statusPrefix) || strings.HasPrefix(status, idemPrefix) {
		t.Error("prefixes overlap")
	}
}
