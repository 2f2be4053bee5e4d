// internal/services/config_schema_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
)

func TestValidatePatchOps(t *testing.T) {
	err := validatePatchOps(nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = validatePatchOps([]PatchOp{{Path: "pages.home.hero_title", Value: "Welcome"}})
	assert.NoError(t, err)

	err = validatePatchOps([]PatchOp{{Path: "pages.home.unknown_field", Value: "x"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = validatePatchOps([]PatchOp{{Path: "footer.links", Value: "x"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// List-valued paths reject scalar values and vice versa.
	err = validatePatchOps([]PatchOp{{Path: "navigation.banner_images", Value: "not-a-list"}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = validatePatchOps([]PatchOp{{Path: "navigation.logo", Value: []interface{}{"a.png"}}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = validatePatchOps([]PatchOp{{Path: "navigation.banner_images", Value: []interface{}{"a.png", "b.png"}}})
	assert.NoError(t, err)
}

func TestValidatePatchOpsRejectsWholeBatch(t *testing.T) {
	ops := []PatchOp{
		{Path: "pages.home.hero_title", Value: "Welcome"},
		{Path: "pages.home.bogus", Value: "x"},
	}
	err := validatePatchOps(ops)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestApplyPatchOpsDoesNotMutateInput(t *testing.T) {
	content := models.DefaultSiteConfigContent()
	ops := []PatchOp{
		{Path: "pages.home.hero_title", Value: "Precision at scale"},
		{Path: "navigation.logo", Value: "logo-v2.svg"},
	}

	next := applyPatchOps(content, ops)

	pages := next["pages"].(map[string]interface{})
	home := pages["home"].(map[string]interface{})
	assert.Equal(t, "Precision at scale", home["hero_title"])
	assert.Equal(t, "logo-v2.svg", next["navigation"].(map[string]interface{})["logo"])

	originalHome := content["pages"].(map[string]interface{})["home"].(map[string]interface{})
	assert.Equal(t, "", originalHome["hero_title"], "original draft content must stay untouched")
	assert.Equal(t, "", content["navigation"].(map[string]interface{})["logo"])
}

func TestApplyPatchOpsListValue(t *testing.T) {
	content := models.DefaultSiteConfigContent()
	banners := []interface{}{"b1.jpg", "b2.jpg"}

	next := applyPatchOps(content, []PatchOp{{Path: "navigation.banner_images", Value: banners}})

	got := next["navigation"].(map[string]interface{})["banner_images"].([]interface{})
	assert.Equal(t, banners, got)
	assert.Empty(t, content["navigation"].(map[string]interface{})["banner_images"])
}

func TestDeepCopyIsolation(t *testing.T) {
	content := models.DefaultSiteConfigContent()
	copied := deepCopyMap(content)

	copied["categories"] = append(copied["categories"].([]interface{}), map[string]interface{}{"id": "x"})
	nav := copied["navigation"].(map[string]interface{})
	nav["logo"] = "changed.png"

	assert.Empty(t, content["categories"].([]interface{}))
	assert.Equal(t, "", content["navigation"].(map[string]interface{})["logo"])
}
