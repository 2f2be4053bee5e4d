// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAccessDenied           = "auth.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Products
	KeyProductCreated   = "product.created"
	KeyProductUpdated   = "product.updated"
	KeyProductDeleted   = "product.deleted"
	KeyProductNotFound  = "product.not_found"
	KeyProductSubmitted = "product.submitted"
	KeyProductApproved  = "product.approved"
	KeyProductRejected  = "product.rejected"

	// Category proposals
	KeyCategoryCreated   = "category_request.created"
	KeyCategoryUpdated   = "category_request.updated"
	KeyCategoryNotFound  = "category_request.not_found"
	KeyCategorySubmitted = "category_request.submitted"
	KeyCategoryApproved  = "category_request.approved"
	KeyCategoryRejected  = "category_request.rejected"

	// Site configuration
	KeyConfigNotFound    = "site_config.not_found"
	KeyConfigUpdated     = "site_config.updated"
	KeyConfigPublished   = "site_config.published"
	KeyConfigRolledBack  = "site_config.rolled_back"
	KeyConfigStaleDraft  = "site_config.stale_draft"
	KeyConfigUnknownPath = "site_config.unknown_path"

	// Uploads and inquiries
	KeyUploadSuccess    = "upload.success"
	KeyInquiryReceived  = "inquiry.received"
	KeyInquiryNotFound  = "inquiry.not_found"
	KeyNotifNotFound    = "notification.not_found"
	KeyPublishCompleted = "publish.completed"
)
