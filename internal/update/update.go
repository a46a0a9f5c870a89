// Package update provides version checking and self-update functionality.
package update

import (
	"context"
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	repoOwner = "stride-sh"
	repoName  = "stride"
)

// CheckResult describes the latest released version relative to the
// currently running one.
type CheckResult struct {
	CurrentVersion string
	LatestVersion  string
	UpdateTo       *selfupdate.Release
}

// Available reports whether the check found a newer release.
func (r *CheckResult) Available() bool {
	return r.UpdateTo != nil
}

// Check queries the latest release on GitHub and compares it against the
// given version.
func Check(ctx context.Context, version string) (*CheckResult, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, fmt.Errorf("detect latest version: %w", err)
	}

	result := &CheckResult{CurrentVersion: version}
	if !found {
		return result, nil
	}

	result.LatestVersion = latest.Version()
	if latest.GreaterThan(version) {
		result.UpdateTo = latest
	}
	return result, nil
}

// Apply replaces the current executable with the given release.
func Apply(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	return nil
}
