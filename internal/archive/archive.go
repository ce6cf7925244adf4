// Package archive publishes map artifacts to the output directory and
// enforces the retention policy over previously published ones.
//
// Artifacts are named ebird_radius_map_{timestamp}_{radius}km.html with a
// zero-padded timestamp (2006-01-02_15-04-05), so names sort the same way
// the embedded timestamps do. Pruning still compares parsed timestamps
// rather than relying on that incidental string ordering. The latest.html
// alias is rewritten on every publish and is never subject to retention.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	artifactPrefix = "ebird_radius_map_"
	artifactExt    = ".html"
	// LatestName is the always-overwritten alias for the newest artifact.
	LatestName = "latest.html"

	stampLayout = "2006-01-02_15-04-05"
	stampLen    = len(stampLayout)
)

// ArtifactName builds the canonical artifact filename for a build.
func ArtifactName(fileSafeStamp string, radiusKm int) string {
	return fmt.Sprintf("%s%s_%dkm%s", artifactPrefix, fileSafeStamp, radiusKm, artifactExt)
}

// Publish writes the artifact into dir (created if missing) and rewrites the
// latest alias with the same content. Returns the artifact's full path.
func Publish(dir, name string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, LatestName), content, 0o644); err != nil {
		return "", fmt.Errorf("update latest alias: %w", err)
	}
	return path, nil
}

// artifact is a retained file with its parsed embedded timestamp.
type artifact struct {
	name  string
	stamp time.Time
}

// Prune deletes timestamped artifacts in dir beyond the keep newest. The
// latest alias and files not matching the naming convention are never
// touched. Individual removal failures are logged and swallowed so one
// stuck file does not abort the batch; the returned count is removals
// attempted, not confirmed. Calling Prune again immediately is a no-op.
// Only a failure to list the directory is returned as an error.
func Prune(dir string, keep int, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list archive dir: %w", err)
	}

	var artifacts []artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if stamp, ok := parseArtifactName(e.Name()); ok {
			artifacts = append(artifacts, artifact{name: e.Name(), stamp: stamp})
		}
	}

	// Newest first; ties broken by name for a stable order.
	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].stamp.Equal(artifacts[j].stamp) {
			return artifacts[i].stamp.After(artifacts[j].stamp)
		}
		return artifacts[i].name > artifacts[j].name
	})

	if keep > len(artifacts) {
		keep = len(artifacts)
	}

	removed := 0
	for _, a := range artifacts[keep:] {
		removed++
		if err := os.Remove(filepath.Join(dir, a.name)); err != nil {
			logger.Warn("prune: remove failed", "artifact", a.name, "error", err)
		}
	}
	return removed, nil
}

// parseArtifactName extracts the embedded timestamp from an artifact
// filename, reporting false for the latest alias and anything not matching
// the naming convention.
func parseArtifactName(name string) (time.Time, bool) {
	if name == LatestName {
		return time.Time{}, false
	}
	if !strings.HasPrefix(name, artifactPrefix) || !strings.HasSuffix(name, artifactExt) {
		return time.Time{}, false
	}

	rest := strings.TrimPrefix(name, artifactPrefix)
	if len(rest) < stampLen {
		return time.Time{}, false
	}
	stamp, err := time.Parse(stampLayout, rest[:stampLen])
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}
