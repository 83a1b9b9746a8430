// Package hostctx holds the process-wide handles the host plugin runtime
// injects at plugin init: a logger, a persistent repository, and a getter
// for the host's merged configuration. The lifecycle orchestrator and
// config resolution read the logger and config getter through Get rather
// than threading them through call signatures; the repository is also
// handed to registry.New directly by internal/pluginhost.
package hostctx

import (
	"sync"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
)

// Logger is the subset of logging operations components use. The host
// plugin runtime's real logger satisfies this; internal/log.With also does.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Host is the set of handles supplied by the host plugin runtime at init.
type Host struct {
	Logger Logger

	// Repository is the host's persistent store for sandbox_registry
	// records. See internal/registry for the schema it backs.
	Repository registry.Repository

	// GetMainConfig returns the host's merged configuration as an opaque
	// value. Callers that need the `.sandbox` partial type-assert it
	// against the interface they expect (see internal/sandboxcfg), so that
	// this package never needs to know the partial's shape.
	GetMainConfig func() any
}

var (
	mu   sync.RWMutex
	host *Host
)

// Init populates the process-wide handle set. It is write-once: calling it
// twice is a programmer error and panics. Reset clears the handles for
// tests.
func Init(h Host) {
	mu.Lock()
	defer mu.Unlock()
	if host != nil {
		panic("hostctx: Init called more than once")
	}
	if h.Logger == nil || h.Repository == nil || h.GetMainConfig == nil {
		panic("hostctx: Init requires Logger, Repository, and GetMainConfig")
	}
	host = &h
}

// Get returns the injected handle set. Calling it before Init is a
// programmer error: the plugin runtime guarantees Init runs before any
// extension operation is dispatched.
func Get() *Host {
	mu.RLock()
	defer mu.RUnlock()
	if host == nil {
		panic("hostctx: Get called before Init")
	}
	return host
}

// Reset clears the injected handles. Exposed only for tests that need a
// fresh process-wide state between cases.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	host = nil
}
