// internal/services/publish_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

// PublishService coordinates bulk review decisions and the combined
// cut-over that ships approved content to the public site.
type PublishService struct {
	content    *ContentService
	proposals  *ProposalService
	siteConfig *SiteConfigService
	audit      *AuditService
}

type BulkDecideRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=100"`
	Action string   `json:"action" validate:"required"`
	Note   string   `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// BulkDecideItem reports the outcome for one target id. Failures never
// abort the batch; each id succeeds or fails on its own.
type BulkDecideItem struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"error_kind,omitempty"`
	Status  string `json:"status,omitempty"`
	Current string `json:"current_status,omitempty"`
}

type BulkDecideResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkDecideItem `json:"items"`
}

// PublishAllResult summarizes a full cut-over: the configuration version
// minted plus how many approved products it covered.
type PublishAllResult struct {
	Version         *models.ConfigVersion `json:"version"`
	ProductsCovered int64                 `json:"products_covered"`
}

func NewPublishService(content *ContentService, proposals *ProposalService, siteConfig *SiteConfigService, audit *AuditService) *PublishService {
	return &PublishService{
		content:    content,
		proposals:  proposals,
		siteConfig: siteConfig,
		audit:      audit,
	}
}

// BulkDecideProducts applies one decision to many products. Each id is
// decided in its own transaction so one invalid target cannot poison
// the rest of the batch.
func (s *PublishService) BulkDecideProducts(actor models.Actor, req *BulkDecideRequest) (*BulkDecideResult, error) {
	action, err := s.validateBulk(actor, req)
	if err != nil {
		return nil, err
	}

	result := &BulkDecideResult{Items: make([]BulkDecideItem, 0, len(req.IDs))}
	for _, raw := range req.IDs {
		item := BulkDecideItem{ID: raw}

		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			item.Error = "invalid id"
			item.Kind = string(apperrors.KindValidation)
			result.Failed++
			result.Items = append(result.Items, item)
			continue
		}

		product, decideErr := s.content.Decide(id, action, req.Note, actor)
		if decideErr != nil {
			s.recordFailure(&item, decideErr)
			result.Failed++
		} else {
			item.OK = true
			item.Status = string(product.Status)
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	logrus.WithFields(logrus.Fields{
		"actor":     actor.AccountID,
		"action":    action,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Bulk product decision completed")

	return result, nil
}

// BulkDecideProposals is the proposal counterpart of BulkDecideProducts.
func (s *PublishService) BulkDecideProposals(actor models.Actor, req *BulkDecideRequest) (*BulkDecideResult, error) {
	action, err := s.validateBulk(actor, req)
	if err != nil {
		return nil, err
	}

	result := &BulkDecideResult{Items: make([]BulkDecideItem, 0, len(req.IDs))}
	for _, raw := range req.IDs {
		item := BulkDecideItem{ID: raw}

		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			item.Error = "invalid id"
			item.Kind = string(apperrors.KindValidation)
			result.Failed++
			result.Items = append(result.Items, item)
			continue
		}

		proposal, decideErr := s.proposals.Decide(id, action, req.Note, actor)
		if decideErr != nil {
			s.recordFailure(&item, decideErr)
			result.Failed++
		} else {
			item.OK = true
			item.Status = string(proposal.Status)
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	logrus.WithFields(logrus.Fields{
		"actor":     actor.AccountID,
		"action":    action,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Bulk proposal decision completed")

	return result, nil
}

// PublishAll cuts the current draft over to a new published version and
// clears the pending-publish indicator on every approved product covered
// by it.
func (s *PublishService) PublishAll(actor models.Actor, message string) (*PublishAllResult, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Authorization("only administrators can publish")
	}

	version, err := s.siteConfig.Publish(actor, message)
	if err != nil {
		return nil, err
	}

	covered, err := s.content.ClearPendingPublish()
	if err != nil {
		// The version is already live at this point; the flag sweep is
		// retried on the next publish.
		logrus.WithError(err).WithField("version", version.Version).
			Warn("Published configuration but failed to clear pending publish flags")
		covered = 0
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "PUBLISH_ALL", "config_version", &version.ID, nil,
			map[string]interface{}{"version": version.Version, "products_covered": covered})
	}

	return &PublishAllResult{Version: version, ProductsCovered: covered}, nil
}

// ReviewQueueSummary backs the admin dashboard counters.
type ReviewQueueSummary struct {
	ProductsAwaiting  int64 `json:"products_awaiting"`
	ProposalsAwaiting int64 `json:"proposals_awaiting"`
	PendingPublish    int64 `json:"pending_publish"`
	DraftDirty        bool  `json:"draft_dirty"`
}

func (s *PublishService) QueueSummary() (*ReviewQueueSummary, error) {
	summary := &ReviewQueueSummary{}

	awaiting := models.StatusAwaitingReview
	_, productTotal, err := s.content.SearchProducts(ProductSearchParams{
		PaginationParams: countOnlyParams(),
		Status:           &awaiting,
	})
	if err != nil {
		return nil, err
	}
	summary.ProductsAwaiting = productTotal

	_, proposalTotal, err := s.proposals.SearchProposals(ProposalSearchParams{
		PaginationParams: countOnlyParams(),
		Status:           &awaiting,
	})
	if err != nil {
		return nil, err
	}
	summary.ProposalsAwaiting = proposalTotal

	pending, err := s.content.PendingPublishCount()
	if err != nil {
		return nil, err
	}
	summary.PendingPublish = pending

	draft, err := s.siteConfig.GetDraft()
	if err != nil {
		return nil, err
	}
	summary.DraftDirty = draft.Dirty

	return summary, nil
}

func (s *PublishService) validateBulk(actor models.Actor, req *BulkDecideRequest) (models.DecisionAction, error) {
	if !actor.IsAdmin() {
		return "", apperrors.Authorization("only administrators can decide on submissions")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return "", apperrors.Validation("validation failed: %v", err)
	}
	return models.ParseDecisionAction(req.Action)
}

func (s *PublishService) recordFailure(item *BulkDecideItem, err error) {
	if appErr, ok := apperrors.AsError(err); ok {
		item.Error = appErr.Message
		item.Kind = string(appErr.Kind)
		item.Current = appErr.CurrentStatus
	} else {
		item.Error = err.Error()
	}
}

func countOnlyParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 1, Order: "desc"}
}
