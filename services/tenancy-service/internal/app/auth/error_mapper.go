// services/tenancy-service/internal/app/auth/error_mapper.go
package auth

import (
	stdErrors "errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainErr "github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/domain/errors"
)

// Domain errors are translated here, in the application layer: the domain
// knows nothing about status codes and the transport knows no business rules.

var codeTable = []struct {
	code codes.Code
	errs []error
}{
	{codes.InvalidArgument, []error{
		domainErr.ErrAccountIDRequired,
		domainErr.ErrEmailRequired,
		domainErr.ErrMemberUIDRequired,
		domainErr.ErrInvalidRole,
		domainErr.ErrRoleNotAssignable,
	}},
	{codes.Unauthenticated, []error{
		domainErr.ErrUnauthenticated,
	}},
	{codes.PermissionDenied, []error{
		domainErr.ErrNotAccountMember,
		domainErr.ErrNotAccountAdmin,
		domainErr.ErrForeignAccount,
	}},
	{codes.NotFound, []error{
		domainErr.ErrAccountNotFound,
		domainErr.ErrMemberNotFound,
		domainErr.ErrInviteNotFound,
	}},
	{codes.FailedPrecondition, []error{
		domainErr.ErrMemberLimitReached,
		domainErr.ErrOwnerImmutable,
		domainErr.ErrCannotRemoveOwner,
		domainErr.ErrCannotRemoveSelf,
		domainErr.ErrInviteNotPending,
	}},
}

// MapTenancyError converts a command or query error into a gRPC status error.
// Business errors keep their sentinel message; everything else, including
// exhausted transaction retries, becomes a bare internal error.
func MapTenancyError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, row := range codeTable {
		for _, target := range row.errs {
			if stdErrors.Is(err, target) {
				return status.Error(row.code, target.Error())
			}
		}
	}

	//  Fallback (never leak internals)
	return status.Error(codes.Internal, "internal error")
}
