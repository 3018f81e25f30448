package resource

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/mitchellh/go-homedir"
)

// NormalizeKey returns the canonical cache key for a file asset: home directory expanded,
// absolute and cleaned, so "~/Models/Ship.GLB" and its absolute spelling share one resource.
// Case is preserved, so the key is itself a path the asset can be reopened from.
//
// Parameters:
//   - path: the asset path as given by the user
//
// Returns:
//   - string: the normalized key
//   - error: LookupFailure if the path cannot be resolved
func NormalizeKey(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", common.ContractError("resource.NormalizeKey", "empty path")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", common.NewError(common.KindLookup, "resource.NormalizeKey", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", common.NewError(common.KindLookup, "resource.NormalizeKey", path, err)
	}
	return abs, nil
}
