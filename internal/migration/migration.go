// Package migration imports the legacy JSON container registry into the
// host's persistent repository, once, at plugin init. Grounded on
// picoclaw's pkg/memory.MigrateFromJSON: read the legacy file, validate
// each entry, write it through the new store, then rename the source file
// to a ".backup" marker so the import is idempotent across restarts.
package migration

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/log"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
)

// legacyEntry is the shape of one element of the legacy registry's
// "entries" array.
type legacyEntry struct {
	ContainerName string `json:"containerName"`
	SessionKey    string `json:"sessionKey"`
	CreatedAtMs   int64  `json:"createdAtMs"`
	LastUsedAtMs  int64  `json:"lastUsedAtMs"`
	Image         string `json:"image"`
	ConfigHash    string `json:"configHash,omitempty"`
}

// legacyFile is the legacy JSON registry's on-disk document.
type legacyFile struct {
	Entries []legacyEntry `json:"entries"`
}

// valid reports whether e has the fields a SandboxRegistryRecord requires.
// ContainerName and SessionKey are the primary and indexed keys (§3); an
// entry missing either can't be upserted meaningfully and is skipped.
func (e legacyEntry) valid() bool {
	return e.ContainerName != "" && e.SessionKey != "" && e.CreatedAtMs > 0
}

// MigrateLegacyRegistry imports path's legacy JSON registry into reg, if
// the file exists. Each entry is validated against the record schema;
// invalid entries are skipped with a warning rather than aborting the
// whole import. On success the file is renamed to "<path>.backup" so a
// second plugin init is a no-op. Read, parse, and rename failures
// propagate, aborting plugin init per §7.
func MigrateLegacyRegistry(path string, reg *registry.Registry) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: reading legacy registry %q: %w", path, err)
	}

	var doc legacyFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("migration: parsing legacy registry %q: %w", path, err)
	}

	migrated := 0
	for _, e := range doc.Entries {
		if !e.valid() {
			log.Warn("migration: skipping invalid legacy registry entry", "containerName", e.ContainerName)
			continue
		}
		if _, err := reg.Update(registry.Record{
			ContainerName: e.ContainerName,
			SessionKey:    e.SessionKey,
			CreatedAtMs:   e.CreatedAtMs,
			LastUsedAtMs:  e.LastUsedAtMs,
			Image:         e.Image,
			ConfigHash:    e.ConfigHash,
		}); err != nil {
			return migrated, fmt.Errorf("migration: upserting %q: %w", e.ContainerName, err)
		}
		migrated++
	}

	if err := os.Rename(path, path+".backup"); err != nil {
		return migrated, fmt.Errorf("migration: renaming legacy registry %q: %w", path, err)
	}

	log.Info("migration: imported legacy sandbox registry", "path", path, "migrated", migrated, "skipped", len(doc.Entries)-migrated)
	return migrated, nil
}
