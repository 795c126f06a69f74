// services/tenancy-service/internal/transport/http/errors.go
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vanditkunapareddi-jpg/procurement-app/services/tenancy-service/internal/app/auth"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

var codeNames = map[codes.Code]struct {
	name   string
	status int
}{
	codes.InvalidArgument:    {"invalid-argument", nethttp.StatusBadRequest},
	codes.Unauthenticated:    {"unauthenticated", nethttp.StatusUnauthorized},
	codes.PermissionDenied:   {"permission-denied", nethttp.StatusForbidden},
	codes.NotFound:           {"not-found", nethttp.StatusNotFound},
	codes.FailedPrecondition: {"failed-precondition", nethttp.StatusBadRequest},
	codes.Internal:           {"internal", nethttp.StatusInternalServerError},
}

func errorResponse(err error) ErrorResponse {
	st := status.Convert(auth.MapTenancyError(err))
	entry, ok := codeNames[st.Code()]
	if !ok {
		entry = codeNames[codes.Internal]
		return ErrorResponse{Error: true, Code: entry.name, Message: "internal error", Status: entry.status}
	}
	return ErrorResponse{Error: true, Code: entry.name, Message: st.Message(), Status: entry.status}
}

// abortWithError renders err and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	resp := errorResponse(err)
	c.AbortWithStatusJSON(resp.Status, resp)
}

func badRequest(message string) error {
	return status.Error(codes.InvalidArgument, message)
}
