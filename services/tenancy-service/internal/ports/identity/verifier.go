// services/tenancy-service/internal/ports/identity/verifier.go
package identity

import "context"

// Caller is the authenticated identity every operation runs as.
// Email is normalized and only set when the identity provider verified it.
type Caller struct {
	UID   string
	Email string
}

// Verifier authenticates a bearer credential. The core trusts its result
// without re-verifying.
type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (Caller, error)
}
