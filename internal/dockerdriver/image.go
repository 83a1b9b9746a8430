package dockerdriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// noSuchImageMarker is the substring `docker image inspect` puts in
// stderr when an image isn't present locally. Matched verbatim per §9:
// "the CLI's textual output is part of the contract... treat these as
// constants in a single place".
const noSuchImageMarker = "No such image"

// FallbackPullImage is the upstream image pulled and retagged as
// sandboxcfg.DefaultSandboxImage when that default is requested but
// missing locally.
const FallbackPullImage = "debian:bookworm-slim"

// DockerImageExists reports whether image is present in the local image
// store, using "docker image inspect" with AllowFailure so a missing
// image is a normal false result, not an error.
func DockerImageExists(ctx context.Context, image string) (bool, error) {
	result, err := ExecDocker(ctx, []string{"image", "inspect", image}, ExecOptions{AllowFailure: true})
	if err != nil {
		return false, err
	}
	if result.ExitCode == 0 {
		return true, nil
	}
	if strings.Contains(result.Stderr, noSuchImageMarker) {
		return false, nil
	}
	return false, fmt.Errorf("docker: inspecting image %q: %s", image, strings.TrimSpace(result.Stderr))
}

// EnsureDockerImage makes sure image exists locally, pulling and retagging
// the fallback image when the missing image is the plugin's own default;
// any other missing image is a hard error instructing the operator.
func EnsureDockerImage(ctx context.Context, image string) error {
	exists, err := DockerImageExists(ctx, image)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if image != sandboxcfg.DefaultSandboxImage {
		return fmt.Errorf("docker: image %q not found locally; pull or build it before use", image)
	}

	if _, err := ExecDocker(ctx, []string{"pull", FallbackPullImage}, ExecOptions{}); err != nil {
		return fmt.Errorf("pulling fallback image %q: %w", FallbackPullImage, err)
	}
	if _, err := ExecDocker(ctx, []string{"tag", FallbackPullImage, image}, ExecOptions{}); err != nil {
		return fmt.Errorf("tagging %q as %q: %w", FallbackPullImage, image, err)
	}
	return nil
}
