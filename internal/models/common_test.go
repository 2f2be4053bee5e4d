// internal/models/common_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfab/portal-backend/internal/apperrors"
)

func TestParseContentStatus(t *testing.T) {
	for _, valid := range []string{"draft", "awaiting_review", "published", "rejected"} {
		status, err := ParseContentStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, ContentStatus(valid), status)
	}

	for _, invalid := range []string{"", "Draft", "pending", "archived", "DRAFT"} {
		_, err := ParseContentStatus(invalid)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	}
}

func TestParseDecisionAction(t *testing.T) {
	action, err := ParseDecisionAction("approve")
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, action)

	action, err = ParseDecisionAction("reject")
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, action)

	_, err = ParseDecisionAction("publish")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestActorRoles(t *testing.T) {
	admin := Actor{AccountID: uuid.New(), Role: RoleAdmin}
	factory := Actor{AccountID: uuid.New(), Role: RoleFactory}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsFactory())
	assert.True(t, factory.IsFactory())
	assert.False(t, factory.IsAdmin())
}

func TestProductVisibility(t *testing.T) {
	p := Product{Status: StatusPublished, Images: pq.StringArray{"https://cdn.example.com/a.jpg"}}
	assert.True(t, p.IsPublicVisible())

	p.Images = nil
	assert.False(t, p.IsPublicVisible(), "published without images stays hidden")

	p.Images = pq.StringArray{"https://cdn.example.com/a.jpg"}
	p.Status = StatusAwaitingReview
	assert.False(t, p.IsPublicVisible())

	p.Status = StatusRejected
	assert.False(t, p.IsPublicVisible())
}

func TestProductMarshalIncludesVisibility(t *testing.T) {
	p := Product{
		Name:   "CNC bracket",
		Status: StatusPublished,
		Images: pq.StringArray{"https://cdn.example.com/a.jpg"},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["public_visible"])

	p.Images = nil
	data, err = json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["public_visible"])
}

func TestProposalMaterialize(t *testing.T) {
	proposal := CategoryProposal{
		Title:       "Precision Fixtures",
		Subtitle:    "Jigs and holding systems",
		Description: "Workholding for machining lines",
		CoverImage:  "https://cdn.example.com/fixtures.jpg",
	}
	proposal.ID = uuid.New()

	entry := proposal.Materialize()
	assert.Equal(t, proposal.ID.String(), entry["id"])
	assert.Equal(t, "Precision Fixtures", entry["title"])
	assert.Equal(t, "Jigs and holding systems", entry["subtitle"])
	assert.Equal(t, "https://cdn.example.com/fixtures.jpg", entry["cover_image"])
}

func TestJSONBRoundTrip(t *testing.T) {
	original := JSONB{"navigation": map[string]interface{}{"logo": "x.png"}}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned JSONB
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "x.png", scanned["navigation"].(map[string]interface{})["logo"])
}
