package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/dockerdriver"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/hostctx"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/naming"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/prune"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// nowFunc is overridden in tests that need deterministic timestamps.
var nowFunc = time.Now

// Orchestrator combines config resolution, the registry, and the Docker
// driver into the ensureContainer state machine (§4.K) and the
// context-resolving entry points (§4.L).
type Orchestrator struct {
	Registry *registry.Registry
	Pruner   *prune.Pruner
}

// NewOrchestrator builds an Orchestrator backed by reg, sharing the same
// registry with its own Pruner.
func NewOrchestrator(reg *registry.Registry) *Orchestrator {
	return &Orchestrator{Registry: reg, Pruner: prune.New(reg)}
}

// EnsureContainerInput is the input to EnsureSandboxContainer.
type EnsureContainerInput struct {
	SessionKey   string // the resolved scope key, not the raw session name
	WorkspaceDir string
	Cfg          sandboxcfg.Config
}

// EnsureSandboxContainer runs the state machine described in §4.K: derive
// the container name, detect drift, apply hot-window protection,
// (re)create or start the container, and upsert the registry.
func (o *Orchestrator) EnsureSandboxContainer(ctx context.Context, in EnsureContainerInput) (string, error) {
	slug := in.SessionKey
	if in.Cfg.Scope != sandboxcfg.ScopeShared {
		slug = naming.SlugifySessionKey(in.SessionKey)
	} else {
		slug = "shared"
	}
	containerName := truncate(in.Cfg.Docker.ContainerPrefix+slug, 63)

	expectedHash := ComputeConfigHash(in.Cfg, in.WorkspaceDir)

	state, err := dockerdriver.DockerContainerState(ctx, containerName)
	if err != nil {
		return "", err
	}

	now := nowFunc()
	storedHash := expectedHash
	driftHot := false

	if state.Exists {
		existing, findErr := o.Registry.Find(containerName)
		hasRecord := findErr == nil
		if findErr != nil && !errors.Is(findErr, registry.ErrNotFound) {
			return "", findErr
		}

		containerHash, err := dockerdriver.ReadContainerConfigHash(ctx, containerName)
		if err != nil {
			return "", err
		}
		storedHash = containerHash
		if storedHash == "" && hasRecord {
			storedHash = existing.ConfigHash
		}

		drift := storedHash != expectedHash
		if drift {
			hot := false
			if state.Running {
				if !hasRecord {
					hot = true
				} else {
					hot = now.Sub(time.UnixMilli(existing.LastUsedAtMs)) < HotWindow
				}
			}

			if state.Running && hot {
				driftHot = true
				hostctx.Get().Logger.Warn("sandbox container config drifted but is in its hot window; not recreating",
					"container", containerName, "sessionKey", in.SessionKey)
			} else {
				if _, err := dockerdriver.ExecDocker(ctx, []string{"rm", "-f", containerName}, dockerdriver.ExecOptions{AllowFailure: true}); err != nil {
					return "", err
				}
				state.Exists = false
				state.Running = false
			}
		}
	}

	if !state.Exists {
		if err := dockerdriver.CreateContainer(ctx, dockerdriver.CreateContainerInput{
			Name:            containerName,
			Cfg:             in.Cfg.Docker,
			ScopeKey:        in.SessionKey,
			WorkspaceDir:    in.WorkspaceDir,
			WorkspaceAccess: in.Cfg.WorkspaceAccess,
			Now:             now.UnixMilli(),
			ConfigHash:      expectedHash,
			Labels:          in.Cfg.Docker.Labels,
		}); err != nil {
			return "", err
		}
	} else if !state.Running {
		if _, err := dockerdriver.ExecDocker(ctx, []string{"start", containerName}, dockerdriver.ExecOptions{}); err != nil {
			return "", err
		}
	}

	recordedHash := expectedHash
	if driftHot {
		recordedHash = storedHash
	}

	if _, err := o.Registry.Update(registry.Record{
		ContainerName: containerName,
		SessionKey:    in.SessionKey,
		CreatedAtMs:   now.UnixMilli(),
		LastUsedAtMs:  now.UnixMilli(),
		Image:         in.Cfg.Docker.Image,
		ConfigHash:    recordedHash,
	}); err != nil {
		return "", err
	}

	return containerName, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
