package sandboxcfg

import (
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestResolveSandboxScope(t *testing.T) {
	shared := ScopeShared
	if got := ResolveSandboxScope(ScopeOptions{Scope: &shared, PerSession: ptr(true)}); got != ScopeShared {
		t.Errorf("expected explicit scope to win, got %v", got)
	}
	if got := ResolveSandboxScope(ScopeOptions{PerSession: ptr(true)}); got != ScopeSession {
		t.Errorf("expected perSession=true to resolve to session, got %v", got)
	}
	if got := ResolveSandboxScope(ScopeOptions{PerSession: ptr(false)}); got != ScopeShared {
		t.Errorf("expected perSession=false to resolve to shared, got %v", got)
	}
	if got := ResolveSandboxScope(ScopeOptions{}); got != ScopeSession {
		t.Errorf("expected default to be session, got %v", got)
	}
}

func TestResolveSandboxDockerConfig_ScalarPrecedence(t *testing.T) {
	global := DockerConfigPartial{Network: ptr("none")}
	session := DockerConfigPartial{Network: ptr("host")}
	cfg := ResolveSandboxDockerConfig(global, session)
	if cfg.Network != "host" {
		t.Errorf("expected session network to win, got %q", cfg.Network)
	}
}

func TestResolveSandboxDockerConfig_EnvMerge(t *testing.T) {
	global := DockerConfigPartial{Env: map[string]string{"LANG": "en_US.UTF-8", "FOO": "bar"}}
	session := DockerConfigPartial{Env: map[string]string{"FOO": "baz", "EXTRA": "v"}}
	cfg := ResolveSandboxDockerConfig(global, session)
	want := map[string]string{"LANG": "en_US.UTF-8", "FOO": "baz", "EXTRA": "v"}
	if !reflect.DeepEqual(cfg.Env, want) {
		t.Errorf("got %v, want %v", cfg.Env, want)
	}
}

func TestResolveSandboxDockerConfig_EnvDefault(t *testing.T) {
	cfg := ResolveSandboxDockerConfig(DockerConfigPartial{}, DockerConfigPartial{})
	want := map[string]string{"LANG": "C.UTF-8"}
	if !reflect.DeepEqual(cfg.Env, want) {
		t.Errorf("got %v, want %v", cfg.Env, want)
	}
}

func TestResolveSandboxDockerConfig_BindsConcatenation(t *testing.T) {
	global := DockerConfigPartial{Binds: []string{"/h/a:/c/a"}}
	session := DockerConfigPartial{Binds: []string{"/h/b:/c/b"}}
	cfg := ResolveSandboxDockerConfig(global, session)
	want := []string{"/h/a:/c/a", "/h/b:/c/b"}
	if !reflect.DeepEqual(cfg.Binds, want) {
		t.Errorf("got %v, want %v", cfg.Binds, want)
	}
}

func TestResolveSandboxDockerConfig_BindsOmittedWhenEmpty(t *testing.T) {
	cfg := ResolveSandboxDockerConfig(DockerConfigPartial{}, DockerConfigPartial{})
	if cfg.Binds != nil {
		t.Errorf("expected nil binds when nothing supplied, got %v", cfg.Binds)
	}
}

func TestResolveSandboxDockerConfig_Defaults(t *testing.T) {
	cfg := ResolveSandboxDockerConfig(DockerConfigPartial{}, DockerConfigPartial{})
	if !cfg.ReadOnlyRoot {
		t.Error("expected readOnlyRoot default true")
	}
	if cfg.Network != "none" {
		t.Errorf("expected default network none, got %q", cfg.Network)
	}
	if cfg.PidsLimit != 100 {
		t.Errorf("expected default pidsLimit 100, got %d", cfg.PidsLimit)
	}
	if cfg.CPUs != 0.5 {
		t.Errorf("expected default cpus 0.5, got %v", cfg.CPUs)
	}
}

func TestResolveSandboxPruneConfig_Defaults(t *testing.T) {
	cfg := ResolveSandboxPruneConfig(PruneConfigPartial{}, PruneConfigPartial{})
	if cfg.IdleHours != 24 || cfg.MaxAgeDays != 7 {
		t.Errorf("got %+v", cfg)
	}
}

func TestShouldSandbox(t *testing.T) {
	if ShouldSandbox(ModeOff, "main") {
		t.Error("expected off to never sandbox")
	}
	if !ShouldSandbox(ModeAll, "main") {
		t.Error("expected all to always sandbox")
	}
	if ShouldSandbox(ModeNonMain, "main") {
		t.Error("expected non-main to skip the main session")
	}
	if !ShouldSandbox(ModeNonMain, "worker-1") {
		t.Error("expected non-main to sandbox non-main sessions")
	}
}

func TestResolveSandboxConfig_TrustLevelForcesMode(t *testing.T) {
	cfg := ResolveSandboxConfig(ResolveOptions{SessionName: "worker", TrustLevel: TrustUntrusted})
	if cfg.Mode != ModeAll {
		t.Errorf("expected untrusted to force mode=all, got %v", cfg.Mode)
	}
	if cfg.WorkspaceAccess != WorkspaceAccessNone {
		t.Errorf("expected untrusted workspace access none, got %v", cfg.WorkspaceAccess)
	}

	cfg = ResolveSandboxConfig(ResolveOptions{SessionName: "worker", TrustLevel: TrustSemiTrusted})
	if cfg.Mode != ModeAll {
		t.Errorf("expected semi-trusted to force mode=all, got %v", cfg.Mode)
	}
	if cfg.WorkspaceAccess != WorkspaceAccessRO {
		t.Errorf("expected semi-trusted workspace access ro, got %v", cfg.WorkspaceAccess)
	}
}

func TestResolveSandboxConfig_DefaultToolLists(t *testing.T) {
	cfg := ResolveSandboxConfig(ResolveOptions{SessionName: "main"})
	if len(cfg.Tools.Allow) != 1 || cfg.Tools.Allow[0] != "*" {
		t.Errorf("expected default allow-all, got %v", cfg.Tools.Allow)
	}
}
