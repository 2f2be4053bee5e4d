// internal/services/config_schema.go
package services

import (
	"strings"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
)

// PatchOp sets one dotted-path field in the configuration draft.
type PatchOp struct {
	Path  string      `json:"path" validate:"required"`
	Value interface{} `json:"value"`
}

// configPaths is the closed set of patchable draft fields. Paths outside
// this set are rejected before any write happens.
var configPaths = map[string]struct{}{
	"navigation.logo":              {},
	"navigation.banner_images":     {},
	"pages.home.hero_title":        {},
	"pages.home.hero_subtitle":     {},
	"pages.home.hero_image":        {},
	"pages.home.intro":             {},
	"pages.about.hero_title":       {},
	"pages.about.hero_subtitle":    {},
	"pages.about.hero_image":       {},
	"pages.about.intro":            {},
	"pages.products.hero_title":    {},
	"pages.products.hero_subtitle": {},
	"pages.products.hero_image":    {},
	"pages.products.intro":         {},
	"pages.contact.hero_title":     {},
	"pages.contact.hero_subtitle":  {},
	"pages.contact.hero_image":     {},
	"pages.contact.intro":          {},
	"categories":                   {},
}

// listValuedPaths must receive a JSON array value.
var listValuedPaths = map[string]struct{}{
	"navigation.banner_images": {},
	"categories":               {},
}

func validatePatchOps(ops []PatchOp) error {
	if len(ops) == 0 {
		return apperrors.Validation("at least one patch operation is required")
	}
	for _, op := range ops {
		if _, ok := configPaths[op.Path]; !ok {
			return apperrors.Validation("unknown configuration path %q", op.Path)
		}
		if _, isList := listValuedPaths[op.Path]; isList {
			if _, ok := op.Value.([]interface{}); !ok {
				return apperrors.Validation("configuration path %q requires an array value", op.Path)
			}
		} else {
			if _, ok := op.Value.(string); !ok {
				return apperrors.Validation("configuration path %q requires a string value", op.Path)
			}
		}
	}
	return nil
}

// applyPatchOps returns a new content map with the operations applied.
// The input map is never mutated; callers compare old and new snapshots
// for audit records.
func applyPatchOps(content models.JSONB, ops []PatchOp) models.JSONB {
	next := deepCopyMap(content)
	for _, op := range ops {
		setPath(next, op.Path, op.Value)
	}
	return next
}

func setPath(m map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := m
	for _, part := range parts[:len(parts)-1] {
		child, ok := cur[part].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			cur[part] = child
		}
		cur = child
	}
	cur[parts[len(parts)-1]] = value
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return t
	}
}
