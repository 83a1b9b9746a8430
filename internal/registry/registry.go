// Package registry tracks per-container state that must survive process
// restarts: when a container was created, which session it belongs to,
// when it was last used, and what config it was last built with. The host
// plugin runtime owns the actual storage; this package defines the
// Repository contract it must satisfy and a Registry that layers the
// spec's upsert-preserves-immutable-fields semantics on top of it.
package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Repository.Find when no record exists for a
// container name.
var ErrNotFound = errors.New("registry: record not found")

// ErrConflict is returned by Repository.Insert when a record already
// exists for the given id, signaling the caller to retry as an update.
var ErrConflict = errors.New("registry: insert conflict")

// Record is a persisted per-container row. Id is always equal to
// ContainerName; the duplication matches the host repository's generic
// primary-key convention (see Host.Repository in internal/hostctx) while
// keeping this package's API expressed in domain terms.
type Record struct {
	ID           string
	ContainerName string
	SessionKey   string
	CreatedAtMs  int64
	LastUsedAtMs int64
	Image        string
	ConfigHash   string // empty means absent
}

// Repository is the persistence contract the host plugin runtime's
// key-value store must satisfy for the sandbox_registry table (§6). It is
// defined here, not in internal/hostctx, so that this package never needs
// to import hostctx — hostctx imports this package for the type instead,
// keeping the dependency one-directional.
type Repository interface {
	Insert(r Record) error
	Update(r Record) error
	Find(containerName string) (Record, error)
	Remove(containerName string) error
	ListAll() ([]Record, error)
}

// Registry wraps a Repository with the upsert semantics §4.H specifies:
// createdAtMs and image are immutable after first insert, configHash is
// preserved on upsert when the new value is absent, and an insert race is
// retried once as an update.
type Registry struct {
	repo Repository
}

// New wraps repo in a Registry.
func New(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// Update upserts entry: on an existing record it preserves createdAtMs and
// image from the stored value, takes the new sessionKey and lastUsedAtMs
// unconditionally, and for configHash keeps the new value if entry
// supplies one, else preserves the stored value. On a first-time insert
// the entry's own fields are used as given. An insert that loses a race to
// a concurrent insert is retried once as an update.
func (g *Registry) Update(entry Record) (Record, error) {
	existing, err := g.repo.Find(entry.ContainerName)
	if errors.Is(err, ErrNotFound) {
		entry.ID = entry.ContainerName
		insertErr := g.repo.Insert(entry)
		if insertErr == nil {
			return entry, nil
		}
		if !errors.Is(insertErr, ErrConflict) {
			return Record{}, fmt.Errorf("registry: insert %q: %w", entry.ContainerName, insertErr)
		}
		existing, err = g.repo.Find(entry.ContainerName)
		if err != nil {
			return Record{}, fmt.Errorf("registry: re-reading %q after insert conflict: %w", entry.ContainerName, err)
		}
	} else if err != nil {
		return Record{}, fmt.Errorf("registry: finding %q: %w", entry.ContainerName, err)
	}

	merged := entry
	merged.ID = entry.ContainerName
	merged.CreatedAtMs = existing.CreatedAtMs
	merged.Image = existing.Image
	if merged.ConfigHash == "" {
		merged.ConfigHash = existing.ConfigHash
	}

	if err := g.repo.Update(merged); err != nil {
		return Record{}, fmt.Errorf("registry: updating %q: %w", entry.ContainerName, err)
	}
	return merged, nil
}

// Find returns the stored record for containerName, or ErrNotFound.
func (g *Registry) Find(containerName string) (Record, error) {
	return g.repo.Find(containerName)
}

// Remove deletes the record for containerName. Removing a record that
// doesn't exist is not an error (self-healing eviction, §4.I).
func (g *Registry) Remove(containerName string) error {
	if err := g.repo.Remove(containerName); err != nil {
		return fmt.Errorf("registry: removing %q: %w", containerName, err)
	}
	return nil
}

// ListAll returns every stored record.
func (g *Registry) ListAll() ([]Record, error) {
	records, err := g.repo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("registry: listing all: %w", err)
	}
	return records, nil
}
