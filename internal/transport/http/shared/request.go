package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"avd/internal/domain/auth"
	"avd/internal/transport/http/api"
	"avd/internal/transport/http/middleware"
)

// DecodeJSON reads the body into dst and answers 400 itself when the body
// is not a single valid JSON document.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "corpo da requisição excede o limite", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "JSON inválido: "+err.Error(), middleware.GetRequestID(r.Context()))
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "corpo deve conter um único objeto JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// Caller returns the authenticated user, answering 401 when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "autenticação obrigatória", middleware.GetRequestID(r.Context()))
	}
	return user, ok
}

func RequestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

// ClientIP is the first X-Forwarded-For hop, or the remote address.
func ClientIP(r *http.Request) string {
	return middleware.ClientIP(r)
}
