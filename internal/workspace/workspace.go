/*
PURPOSE:
  Discovers benchmark targets from a workspace manifest.
  Expands glob members and assigns each target a toolchain tag.

REQUIREMENTS:
  User-specified:
  - Members live in a `bench.yaml` manifest at the workspace root.
  - A trailing `*` member expands to every directory under its parent.

  Implementation-discovered:
  - Expansion must be sorted so runs are deterministic.
  - The toolchain tag is decided once here, at discovery, so the engine
    never branches on target names.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (targets subcommand)
  - Produces: []model.Target

ERROR HANDLING:
  - A missing or unreadable manifest is fatal to the whole run.

IMPLEMENTATION RULES:
  - Category is the member's parent directory, name is the leaf.
  - Use yaml.v3, consistent with internal/config.

USAGE:
  targets, err := workspace.Load("/path/to/workspace")

SELF-HEALING INSTRUCTIONS:
  - If discovery misses targets, check bench.yaml members and that each
    expanded entry is a directory.

RELATED FILES:
  - internal/model/types.go
  - internal/toolchain/toolchain.go

MAINTENANCE:
  - Update tag assignment when a new toolchain is added.
*/

package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benchbot/benchbot/internal/model"
)

// ManifestName is the file looked up at the workspace root.
const ManifestName = "bench.yaml"

type manifest struct {
	Members []string `yaml:"members"`
}

// Load reads the workspace manifest and returns the expanded, sorted
// list of benchmark targets.
func Load(dir string) ([]model.Target, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse workspace manifest: %w", err)
	}

	members, err := expandMembers(m.Members, dir)
	if err != nil {
		return nil, err
	}

	targets := make([]model.Target, 0, len(members))
	for _, member := range members {
		category := path.Dir(member)
		name := path.Base(member)
		targets = append(targets, model.Target{
			Category:  category,
			Name:      name,
			Dir:       filepath.Join(dir, filepath.FromSlash(member)),
			Toolchain: tagFor(name),
		})
	}
	return targets, nil
}

// expandMembers resolves `parent/*` entries into one member per
// directory under parent. Non-glob members pass through unchanged.
func expandMembers(members []string, dir string) ([]string, error) {
	var expanded []string
	for _, member := range members {
		member = path.Clean(strings.TrimSpace(member))
		if path.Base(member) != "*" {
			expanded = append(expanded, member)
			continue
		}

		parent := path.Dir(member)
		entries, err := os.ReadDir(filepath.Join(dir, filepath.FromSlash(parent)))
		if err != nil {
			return nil, fmt.Errorf("failed to expand member %q: %w", member, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				expanded = append(expanded, path.Join(parent, entry.Name()))
			}
		}
	}
	sort.Strings(expanded)
	return expanded, nil
}

// tagFor picks the toolchain for a target. Go implementations are named
// with a `go_` prefix; everything else in the workspace builds with cargo.
func tagFor(name string) model.Tag {
	if strings.HasPrefix(name, "go_") {
		return model.TagGo
	}
	return model.TagCargo
}
