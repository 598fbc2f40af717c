package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("SG_TEST_VALUE", "  console ")
	if got := Get("SG_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	t.Setenv("SG_TEST_VALUE", "   ")
	if got := Get("SG_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("SG_TEST_PORT", "")
	t.Setenv("SG_TEST_APP_PORT", "9000")
	if got := First("3001", "SG_TEST_PORT", "SG_TEST_APP_PORT"); got != "9000" {
		t.Fatalf("expected second key, got %q", got)
	}

	t.Setenv("SG_TEST_PORT", "8080")
	if got := First("3001", "SG_TEST_PORT", "SG_TEST_APP_PORT"); got != "8080" {
		t.Fatalf("expected first key, got %q", got)
	}

	if got := First("3001"); got != "3001" {
		t.Fatalf("expected fallback without keys, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("SG_TEST_FLAG", "true")
	if !Bool("SG_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("SG_TEST_FLAG", "nope")
	if !Bool("SG_TEST_FLAG", true) {
		t.Fatal("expected fallback on unparsable value")
	}
}
