// Package pluginhost wires the sandbox core into the host plugin runtime
// (§6): it builds the process-wide hostctx handles, runs the one-shot
// legacy registry migration, exposes the "sandbox" extension namespace's
// operations, and implements idempotent shutdown teardown. Grounded on the
// teacher's cmd/moat/cli root command, which performs the equivalent
// "wire global state once, expose a stable surface, clean up on exit"
// role for the CLI entry point.
package pluginhost

// Name is the plugin's manifest name (§6).
const Name = "wopr-plugin-sandbox"

// Version is the plugin's manifest version string (§6).
const Version = "1.0.0"

// Category is the plugin's manifest category (§6).
const Category = "infrastructure"

// Capabilities lists the manifest's declared capabilities (§6).
var Capabilities = []string{"sandbox"}

// ExtensionNamespace is the namespace the host plugin runtime registers
// this plugin's operations under (§6).
const ExtensionNamespace = "sandbox"

// Manifest describes the plugin to the host runtime.
type Manifest struct {
	Name         string
	Version      string
	Category     string
	Capabilities []string
}

// NewManifest returns this plugin's manifest.
func NewManifest() Manifest {
	return Manifest{
		Name:         Name,
		Version:      Version,
		Category:     Category,
		Capabilities: append([]string(nil), Capabilities...),
	}
}
