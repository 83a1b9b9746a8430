package pluginhost

import (
	"os"
	"path/filepath"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandbox"
)

// StateDir returns $WOPR_HOME if set, else $HOME/.wopr (§6: "WOPR_HOME
// overrides the default state directory base").
func StateDir() string {
	if home := os.Getenv("WOPR_HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".wopr")
	}
	return filepath.Join(".", ".wopr")
}

// DefaultWorkspaceRoot returns $HOME/.wopr/sandboxes (or $WOPR_HOME/sandboxes
// when WOPR_HOME is set), the default workspace root used when no
// operator-chosen root is configured (§6).
func DefaultWorkspaceRoot() string {
	return filepath.Join(StateDir(), sandbox.WorkspaceHomeRelPath)
}

// LegacyRegistryPath returns the well-known path of the legacy JSON
// registry this plugin migrates once at init (§6, §4.M).
func LegacyRegistryPath() string {
	return filepath.Join(StateDir(), sandbox.LegacyRegistryRelPath)
}

// DefaultSQLitePath returns the path of the default sandbox_registry
// sqlite database, used when the host doesn't supply its own Repository.
func DefaultSQLitePath() string {
	return filepath.Join(StateDir(), "sandbox", "registry.db")
}

// DefaultGlobalConfigPath returns the path of the operator-facing global
// defaults YAML file (§4.E AMBIENT STACK / configuration loading).
func DefaultGlobalConfigPath() string {
	return filepath.Join(StateDir(), "sandbox", "config.yaml")
}

// DefaultLogDir returns the directory debug log files are written to.
func DefaultLogDir() string {
	return filepath.Join(StateDir(), "sandbox", "logs")
}
