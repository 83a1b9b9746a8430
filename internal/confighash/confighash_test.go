package confighash

import "testing"

func TestComputeSandboxConfigHash_Deterministic(t *testing.T) {
	docker := map[string]Value{"image": "debian", "capDrop": []string{"ALL", "NET_RAW"}}
	a := ComputeSandboxConfigHash(docker, "ro", "/home/alice")
	b := ComputeSandboxConfigHash(docker, "ro", "/home/alice")
	if a != b {
		t.Fatalf("expected stable hash, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestComputeSandboxConfigHash_ArrayOrderIndependence(t *testing.T) {
	d1 := map[string]Value{"capDrop": []string{"ALL", "NET_RAW"}}
	d2 := map[string]Value{"capDrop": []string{"NET_RAW", "ALL"}}
	if ComputeSandboxConfigHash(d1, "none", "/x") != ComputeSandboxConfigHash(d2, "none", "/x") {
		t.Fatal("expected capDrop order to not affect the hash")
	}
}

func TestComputeSandboxConfigHash_KeyOrderIndependence(t *testing.T) {
	d1 := map[string]Value{"a": "1", "b": "2"}
	d2 := map[string]Value{"b": "2", "a": "1"}
	if ComputeSandboxConfigHash(d1, "none", "/x") != ComputeSandboxConfigHash(d2, "none", "/x") {
		t.Fatal("expected map key order to not affect the hash")
	}
}

func TestComputeSandboxConfigHash_UndefinedFieldsIgnored(t *testing.T) {
	withNil := map[string]Value{"a": "1", "seccompProfile": nil}
	without := map[string]Value{"a": "1"}
	if ComputeSandboxConfigHash(withNil, "none", "/x") != ComputeSandboxConfigHash(without, "none", "/x") {
		t.Fatal("expected a nil-valued field to be dropped, matching an absent field")
	}
}

func TestComputeSandboxConfigHash_ValueChangeChangesHash(t *testing.T) {
	d1 := map[string]Value{"env": map[string]string{"FOO": "bar"}}
	d2 := map[string]Value{"env": map[string]string{"FOO": "baz"}}
	if ComputeSandboxConfigHash(d1, "none", "/x") == ComputeSandboxConfigHash(d2, "none", "/x") {
		t.Fatal("expected changed env value to change the hash")
	}
}

func TestComputeSandboxConfigHash_ObjectArrayOrderPreserved(t *testing.T) {
	first := map[string]Value{"name": "a"}
	second := map[string]Value{"name": "b"}
	d1 := map[string]Value{"items": []Value{first, second}}
	d2 := map[string]Value{"items": []Value{second, first}}
	// Arrays of objects are not sorted, so reordering them changes the hash.
	if ComputeSandboxConfigHash(d1, "none", "/x") == ComputeSandboxConfigHash(d2, "none", "/x") {
		t.Fatal("expected object array order to affect the hash")
	}
}
