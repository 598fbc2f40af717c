package enums

import "testing"

func TestParseAccountStatus(t *testing.T) {
	for _, raw := range []string{"Active", "Suspended", "Terminated"} {
		got, err := ParseAccountStatus(raw)
		if err != nil {
			t.Fatalf("ParseAccountStatus(%q) returned error: %v", raw, err)
		}
		if got.String() != raw {
			t.Fatalf("expected %q got %q", raw, got)
		}
	}
	for _, raw := range []string{"", "active", "Deleted"} {
		if _, err := ParseAccountStatus(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestRoleValidity(t *testing.T) {
	if !RoleGuard.IsValid() {
		t.Fatal("guard should be a valid role")
	}
	if Role("owner").IsValid() {
		t.Fatal("owner should not be a valid role")
	}
	if _, err := ParseRole("supervisor"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStatusesReturnsCopy(t *testing.T) {
	statuses := AccountStatuses()
	statuses[0] = "Mutated"
	if AccountStatuses()[0] != AccountStatusActive {
		t.Fatal("AccountStatuses must not expose the backing slice")
	}
}
