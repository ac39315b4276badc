package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrorResponse lists the fields that failed validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeBody decodes a JSON request body into dst and validates its struct
// tags. It writes the error response itself and reports whether the caller
// may continue. An empty body is accepted when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return false
		}
		resp := ValidationErrorResponse{Error: "validation failed", Fields: map[string]string{}}
		for _, fe := range verrs {
			resp.Fields[jsonFieldName(fe.Field())] = describeValidation(fe)
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return false
	}
	return true
}

func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// writeServiceError maps service errors to status codes. Unknown errors are
// logged and answered with 500.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInsufficientCoins):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, services.ErrAlreadyEnrolled), errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrEmailInUse), errors.Is(err, services.ErrApplicationClosed),
		errors.Is(err, services.ErrDuplicatePayment):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNotEnrolled), errors.Is(err, services.ErrNotCourseMentor):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrInvalidRating), errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, models.ErrInvalidCourse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Printf("Error %s: %v", action, err)
		http.Error(w, "Failed "+action, http.StatusInternalServerError)
	}
}

// HealthCheck reports that the service is up.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
