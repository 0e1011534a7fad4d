// Package podmap loads the optional pod → engineering-manager lookup used
// by the presentation side to backfill the manager field when a record has
// none. The file format is a flat "pod: manager" map with #-comments.
package podmap

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Map resolves pod names to engineering managers.
type Map map[string]string

// Load reads the map file at path. An empty path yields an empty map (the
// file is optional); a missing or malformed file is an error, because a
// configured-but-broken map silently losing manager assignments is worse
// than failing loudly.
func Load(path string) (Map, error) {
	if path == "" {
		return Map{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pod map %s: %w", path, err)
	}

	m := Map{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing pod map %s: %w", path, err)
	}
	return m, nil
}

// Lookup returns the manager for pod, or "" when the pod is unmapped.
func (m Map) Lookup(pod string) string {
	return m[pod]
}
