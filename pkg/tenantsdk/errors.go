package tenantsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cobrax/tenauth/pkg/httpx"
)

// Error codes returned by the token endpoints. User-facing descriptions are
// in Portuguese; the codes are stable machine identifiers.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidCode       = "invalid_access_code"
	ErrorCodeUsedCode          = "used_access_code"
	ErrorCodeExpiredCode       = "expired_access_code"
	ErrorCodeTenantNotFound    = "tenant_not_found"
	ErrorCodeTenantInactive    = "inactive_tenant"
	ErrorCodeSlugMismatch      = "slug_mismatch"
	ErrorCodeNoMembership      = "no_tenant_membership"
	ErrorCodeInactiveMember    = "inactive_membership"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeTokenExpired      = "token_expired"
	ErrorCodeTokenRevoked      = "token_revoked"
	ErrorCodeInvalidRefresh    = "invalid_refresh_token"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
	ErrorCodeInsufficientScope = "insufficient_permission"
	ErrorCodeServerError       = "server_error"
)

// APIError is the error envelope every endpoint uses. It implements error
// so the SDK client can return it directly, and WriteError so handlers can
// serialise it.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// WriteValidationError writes this APIError as a validation verdict. The
// envelope carries an explicit "valid": false so callers of the validate
// endpoint can branch on one field for both outcomes.
func (e *APIError) WriteValidationError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"valid":             false,
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "requisição malformada ou parâmetros ausentes",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCode,
		Description: "Código de acesso inválido",
	}

	ErrUsedCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUsedCode,
		Description: "Código de acesso inválido",
	}

	ErrExpiredCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeExpiredCode,
		Description: "Código de acesso inválido",
	}

	ErrTenantNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeTenantNotFound,
		Description: "Tenant não definido",
	}

	ErrTenantInactive = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeTenantInactive,
		Description: "Tenant inativo",
	}

	ErrSlugMismatch = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeSlugMismatch,
		Description: "Permissão insuficiente",
	}

	ErrNoMembership = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNoMembership,
		Description: "Permissão insuficiente",
	}

	ErrInactiveMembership = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInactiveMember,
		Description: "Permissão insuficiente",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "token inválido",
	}

	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "token expirado",
	}

	ErrTokenRevoked = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenRevoked,
		Description: "token revogado",
	}

	ErrInvalidRefresh = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidRefresh,
		Description: "refresh token inválido",
	}

	ErrInsufficientPermission = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientScope,
		Description: "Permissão insuficiente",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "erro interno do servidor",
	}
)
