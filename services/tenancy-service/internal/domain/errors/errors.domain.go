// services/tenancy-service/internal/domain/errors/errors.domain.go
package errors

import "errors"

// Standard Sentinel Errors
// The transport layer maps these to status codes through app/auth.MapTenancyError.
// Anything not listed here is reported as an internal error.

var (
	// Validation Errors (checked before any I/O)
	ErrAccountIDRequired = errors.New("accountId is required")
	ErrEmailRequired     = errors.New("invite email is required")
	ErrMemberUIDRequired = errors.New("memberUid is required")
	ErrInvalidRole       = errors.New("role must be one of owner, admin, member")
	ErrRoleNotAssignable = errors.New("owner role cannot be assigned")

	// Authentication Errors
	ErrUnauthenticated = errors.New("sign in required")

	// Authorization Errors
	ErrNotAccountMember = errors.New("caller is not a member of this account")
	ErrNotAccountAdmin  = errors.New("operation requires owner or admin role")
	ErrForeignAccount   = errors.New("account is not owned by this user")

	// Lookup Errors
	ErrAccountNotFound = errors.New("account not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInviteNotFound  = errors.New("invite not found")

	// Business Rule Errors
	ErrMemberLimitReached = errors.New("member limit reached")
	ErrOwnerImmutable     = errors.New("owner role cannot be changed")
	ErrCannotRemoveOwner  = errors.New("owner cannot be removed")
	ErrCannotRemoveSelf   = errors.New("you cannot remove yourself")
	ErrInviteNotPending   = errors.New("invite is no longer active")

	// Storage Errors
	// ErrTxConflict is internal to the stores: a read document changed before commit.
	ErrTxConflict         = errors.New("transaction conflict")
	ErrTransactionAborted = errors.New("transaction aborted after retries")
	ErrReadAfterWrite     = errors.New("transaction reads must happen before writes")
)
