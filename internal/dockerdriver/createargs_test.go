package dockerdriver

import (
	"strings"
	"testing"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

func TestBuildSandboxCreateArgs_ExampleVector(t *testing.T) {
	cfg := sandboxcfg.DockerConfig{
		ReadOnlyRoot: true,
		Tmpfs:        []string{"/tmp", "/var/tmp"},
		PidsLimit:    50,
		Memory:       "256m",
		CPUs:         1.5,
		Ulimits: map[string]sandboxcfg.Ulimit{
			"nofile": {Soft: int64Ptr(1024), Hard: int64Ptr(2048)},
		},
	}
	args := BuildSandboxCreateArgs(CreateArgsInput{Name: "c1", Cfg: cfg, ScopeKey: "main", Now: 1000})
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--read-only",
		"--tmpfs /tmp",
		"--tmpfs /var/tmp",
		"--pids-limit 50",
		"--memory 256m",
		"--cpus 1.5",
		"--ulimit nofile=1024:2048",
		"--security-opt no-new-privileges",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected args to contain %q, got %q", want, joined)
		}
	}
}

func TestBuildSandboxCreateArgs_Deterministic(t *testing.T) {
	cfg := sandboxcfg.DockerConfig{CapDrop: []string{"ALL", "NET_RAW"}, Labels: map[string]string{"a": "1", "b": "2"}}
	in := CreateArgsInput{Name: "c1", Cfg: cfg, ScopeKey: "main", CreatedAtMs: 5000, ConfigHash: "abc"}
	a := BuildSandboxCreateArgs(in)
	b := BuildSandboxCreateArgs(in)
	if strings.Join(a, " ") != strings.Join(b, " ") {
		t.Fatalf("expected deterministic output, got %v and %v", a, b)
	}
}

func TestBuildSandboxCreateArgs_ConfigHashLabelOmittedWhenAbsent(t *testing.T) {
	args := BuildSandboxCreateArgs(CreateArgsInput{Name: "c1", ScopeKey: "main", Now: 1})
	for _, a := range args {
		if strings.HasPrefix(a, ConfigHashLabel+"=") {
			t.Fatalf("expected no configHash label when none supplied, got %v", args)
		}
	}
}

func TestBuildSandboxCreateArgs_SkipsBlankCustomLabels(t *testing.T) {
	args := BuildSandboxCreateArgs(CreateArgsInput{
		Name: "c1", ScopeKey: "main", Now: 1,
		Labels: map[string]string{"empty": "", "": "value", "good": "1"},
	})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "good=1") {
		t.Errorf("expected good=1 label present, got %q", joined)
	}
	if strings.Contains(joined, "empty=") || strings.Contains(joined, "=value") {
		t.Errorf("expected blank-key/value labels dropped, got %q", joined)
	}
}

func TestFormatUlimit(t *testing.T) {
	cases := []struct {
		name string
		u    sandboxcfg.Ulimit
		want string
		ok   bool
	}{
		{"numeric", sandboxcfg.Ulimit{Value: int64Ptr(10)}, "10", true},
		{"soft-hard", sandboxcfg.Ulimit{Soft: int64Ptr(1), Hard: int64Ptr(2)}, "1:2", true},
		{"soft-only", sandboxcfg.Ulimit{Soft: int64Ptr(1)}, "1", true},
		{"hard-only", sandboxcfg.Ulimit{Hard: int64Ptr(2)}, "2", true},
		{"negative-clamped", sandboxcfg.Ulimit{Value: int64Ptr(-5)}, "0", true},
		{"empty", sandboxcfg.Ulimit{}, "", false},
	}
	for _, c := range cases {
		got, ok := formatUlimit(c.u)
		if ok != c.ok || got != c.want {
			t.Errorf("%s: formatUlimit() = (%q, %v), want (%q, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}

func int64Ptr(v int64) *int64 { return &v }
