package naming

import (
	"regexp"
	"testing"
)

var slugShape = regexp.MustCompile(`^[a-z0-9._-]{1,32}-[0-9a-f]{8}$`)

func TestSlugifySessionKey_Shape(t *testing.T) {
	inputs := []string{"main", "  ", "", "Agent/Session #1", "já café ☕", "a-very-long-session-name-that-exceeds-the-thirty-two-character-budget"}
	for _, in := range inputs {
		got := SlugifySessionKey(in)
		if !slugShape.MatchString(got) {
			t.Errorf("SlugifySessionKey(%q) = %q, does not match expected shape", in, got)
		}
		if len(got) > 41 {
			t.Errorf("SlugifySessionKey(%q) = %q, longer than 41 chars", in, got)
		}
	}
}

func TestSlugifySessionKey_Deterministic(t *testing.T) {
	const in = "Agent Session #42"
	a := SlugifySessionKey(in)
	b := SlugifySessionKey(in)
	if a != b {
		t.Errorf("expected deterministic output, got %q and %q", a, b)
	}
}

func TestSlugifySessionKey_BlankFallsBackToSession(t *testing.T) {
	got := SlugifySessionKey("   ")
	if got[:8] != "session-" {
		t.Errorf("expected slug to start with 'session-', got %q", got)
	}
}

func TestSlugifySessionKey_DistinctInputsDiverge(t *testing.T) {
	a := SlugifySessionKey("foo!!!")
	b := SlugifySessionKey("foo???")
	if a == b {
		t.Errorf("expected distinct inputs that collapse to the same slug body to diverge via hash suffix, got equal %q", a)
	}
}

func TestResolveSandboxScopeKey(t *testing.T) {
	cases := []struct {
		scope, sessionKey, want string
	}{
		{"shared", "anything", "shared"},
		{"shared", "", "shared"},
		{"session", "alice", "alice"},
		{"session", "  ", "main"},
		{"session", "", "main"},
	}
	for _, c := range cases {
		got := ResolveSandboxScopeKey(c.scope, c.sessionKey)
		if got != c.want {
			t.Errorf("ResolveSandboxScopeKey(%q, %q) = %q, want %q", c.scope, c.sessionKey, got, c.want)
		}
	}
}

func TestResolveSandboxWorkspaceDir(t *testing.T) {
	dir := ResolveSandboxWorkspaceDir("/root/sandboxes", "alice")
	want := "/root/sandboxes/" + SlugifySessionKey("alice")
	if dir != want {
		t.Errorf("got %q, want %q", dir, want)
	}
}
