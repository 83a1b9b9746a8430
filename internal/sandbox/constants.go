// Package sandbox ties together configuration resolution, the registry, and
// the Docker driver into the per-session container lifecycle: ensuring a
// session's container exists in the right configuration and resolving the
// context callers use to run commands inside it.
package sandbox

import "time"

// HotWindow is the grace period after a container's lastUsedAtMs during
// which config drift is flagged but not acted upon (§4.K, §9).
const HotWindow = 5 * time.Minute

// LegacyRegistryRelPath is the legacy JSON registry's path relative to the
// state directory (§6).
const LegacyRegistryRelPath = "sandbox/containers.json"

// WorkspaceHomeRelPath is the default workspace root relative to the state
// directory when no operator-chosen root is configured (§6).
const WorkspaceHomeRelPath = "sandboxes"
