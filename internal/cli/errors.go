// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Vault errors
	ErrVaultNotFound     = "VAULT_NOT_FOUND"
	ErrVaultNotSpecified = "VAULT_NOT_SPECIFIED"

	// Config errors
	ErrConfigNotFound = "CONFIG_NOT_FOUND"
	ErrConfigInvalid  = "CONFIG_INVALID"

	// Template errors
	ErrTemplateStoreNotFound = "TEMPLATE_STORE_NOT_FOUND"
	ErrTemplateMissing       = "TEMPLATE_MISSING"

	// Customer errors
	ErrCustomerExists   = "CUSTOMER_EXISTS"
	ErrCustomerNotFound = "CUSTOMER_NOT_FOUND"

	// Structure errors
	ErrStructureFailed    = "STRUCTURE_FAILED"
	ErrVerificationFailed = "VERIFICATION_FAILED"
	ErrCleanupDisabled    = "CLEANUP_DISABLED"

	// Backup errors
	ErrBackupNotFound = "BACKUP_NOT_FOUND"
	ErrBackupInvalid  = "BACKUP_INVALID"

	// File errors
	ErrFileReadError    = "FILE_READ_ERROR"
	ErrFileWriteError   = "FILE_WRITE_ERROR"
	ErrFileOutsideVault = "FILE_OUTSIDE_VAULT"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Input errors
	ErrInvalidInput         = "INVALID_INPUT"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnWidthOverflow  = "WIDTH_OVERFLOW"
	WarnInvalidEntry   = "INVALID_CUSTOMER_ENTRY"
	WarnHubDrift       = "HUB_DRIFT"
	WarnMissingArchive = "MISSING_ARCHIVE"
	WarnHistoryFailed  = "HISTORY_UPDATE_FAILED"
)
