package toolpolicy

import (
	"reflect"
	"testing"
)

func TestIsToolAllowed_Wildcard(t *testing.T) {
	p := Policy{Allow: []string{"memory_*"}, Deny: nil}
	names := []string{"memory_read", "memory_write", "exec_command"}
	want := map[string]bool{"memory_read": true, "memory_write": true, "exec_command": false}
	for _, n := range names {
		if got := IsToolAllowed(p, n); got != want[n] {
			t.Errorf("IsToolAllowed(%q) = %v, want %v", n, got, want[n])
		}
	}
}

func TestIsToolAllowed_DenyWins(t *testing.T) {
	p := Policy{Allow: []string{"exec_command"}, Deny: []string{"exec_command"}}
	if IsToolAllowed(p, "exec_command") {
		t.Fatal("expected deny to win over a matching allow")
	}
}

func TestIsToolAllowed_EmptyAllowAllowsAll(t *testing.T) {
	p := Policy{}
	if !IsToolAllowed(p, "anything") {
		t.Fatal("expected empty allow list to allow everything not denied")
	}
}

func TestIsToolAllowed_Normalization(t *testing.T) {
	p := Policy{Allow: []string{"Memory_Read"}}
	if !IsToolAllowed(p, "  memory_read  ") {
		t.Fatal("expected trim+lowercase normalization on both pattern and name")
	}
}

func TestFilterToolsByPolicy(t *testing.T) {
	p := Policy{Allow: []string{"memory_*"}}
	tools := []string{"memory_read", "memory_write", "exec_command"}
	result := FilterToolsByPolicy(tools, p)
	if !reflect.DeepEqual(result.Allowed, []string{"memory_read", "memory_write"}) {
		t.Errorf("allowed = %v", result.Allowed)
	}
	if !reflect.DeepEqual(result.Denied, []string{"exec_command"}) {
		t.Errorf("denied = %v", result.Denied)
	}
}

func TestFilterToolsByPolicy_Permutation(t *testing.T) {
	p := Policy{Allow: []string{"a*"}, Deny: []string{"ab"}}
	tools := []string{"abc", "ab", "axy", "zzz"}
	result := FilterToolsByPolicy(tools, p)
	combined := append(append([]string{}, result.Allowed...), result.Denied...)
	if len(combined) != len(tools) {
		t.Fatalf("expected permutation of input, got %v from %v", combined, tools)
	}
}

func TestResolveList_Precedence(t *testing.T) {
	r := ResolveList([]string{"a"}, []string{"b"}, []string{"c"}, "s", "g", "d")
	if r.Source != SourceSession || r.Patterns[0] != "a" {
		t.Errorf("expected session to win, got %+v", r)
	}

	r = ResolveList(nil, []string{"b"}, []string{"c"}, "s", "g", "d")
	if r.Source != SourceGlobal {
		t.Errorf("expected global to win when session absent, got %+v", r)
	}

	r = ResolveList(nil, nil, []string{"c"}, "s", "g", "d")
	if r.Source != SourceDefault {
		t.Errorf("expected default to win when both absent, got %+v", r)
	}
}
