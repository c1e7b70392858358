package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/tastelog/tastelog/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondGraphQLError(w, "VALIDATION_ERROR", "malformed request body")
		return
	}
	if req.Query == "" {
		s.respondGraphQLError(w, "VALIDATION_ERROR", "query is required")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})
	s.respondJSON(w, http.StatusOK, result)
}

// apiError carries a taxonomy code (and optional detail) into the GraphQL
// errors extensions object.
type apiError struct {
	message    string
	extensions map[string]interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// Extensions implements gqlerrors.ExtendedError.
func (e *apiError) Extensions() map[string]interface{} {
	return e.extensions
}

// translateError maps the domain taxonomy onto the wire error codes.
// Transient and unexpected failures are logged here and reported without
// internal detail.
func (s *Server) translateError(err error) error {
	var (
		validation *domain.ValidationError
		authn      *domain.AuthenticationError
		notFound   *domain.NotFoundError
		transient  *domain.TransientError
	)
	switch {
	case errors.As(err, &validation):
		ext := map[string]interface{}{"code": "VALIDATION_ERROR"}
		message := validation.Reason
		if validation.Field != "" {
			ext["field"] = validation.Field
			message = fmt.Sprintf("%s: %s", validation.Field, validation.Reason)
		}
		return &apiError{message: message, extensions: ext}
	case errors.As(err, &authn):
		return &apiError{
			message:    authn.Reason,
			extensions: map[string]interface{}{"code": "UNAUTHENTICATED"},
		}
	case errors.As(err, &notFound):
		return &apiError{
			message:    notFound.Error(),
			extensions: map[string]interface{}{"code": "NOT_FOUND", "entity": notFound.Entity},
		}
	case errors.As(err, &transient):
		s.logger.Printf("transient failure: %v", err)
		return &apiError{
			message:    "service temporarily unavailable",
			extensions: map[string]interface{}{"code": "UNAVAILABLE", "retryable": true},
		}
	default:
		s.logger.Printf("internal error: %v", err)
		return &apiError{
			message:    "internal error",
			extensions: map[string]interface{}{"code": "INTERNAL_ERROR"},
		}
	}
}

// respondGraphQLError writes a GraphQL-shaped errors payload for failures
// that happen before execution starts.
func (s *Server) respondGraphQLError(w http.ResponseWriter, code, message string) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"errors": []map[string]interface{}{
			{
				"message":    message,
				"extensions": map[string]interface{}{"code": code},
			},
		},
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

type contextKey int

const actorContextKey contextKey = iota

func withActor(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, actorContextKey, user)
}

// actorFrom returns the identity resolved for this request, or nil for
// anonymous callers.
func actorFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(actorContextKey).(*domain.User)
	return user
}
