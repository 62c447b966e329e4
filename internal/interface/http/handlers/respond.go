// Package handlers contains the HTTP request handlers for the booking API.
// Handlers decode and validate request bodies, invoke the application layer,
// and translate domain error kinds into HTTP status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mentorhub/mentor-scheduling/internal/domain/schedule"
	"github.com/mentorhub/mentor-scheduling/internal/domain/shared"
)

// validate holds the shared validator instance; struct rules live in the
// request types' validate tags.
var validate = validator.New()

const maxBodyBytes = 1 << 20

// errorResponse is the JSON shape of every non-2xx response.
type errorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Violations []violationDetail `json:"violations,omitempty"`
}

// violationDetail reports one rejected block of a schedule batch.
type violationDetail struct {
	BlockIndex int    `json:"block_index"`
	Week       int    `json:"week"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Reason     string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a domain error to an HTTP response. Validation failures are
// 400, conflicts 409, missing aggregates 404, infrastructure trouble 502.
func writeError(w http.ResponseWriter, err error) {
	var batchErr *schedule.BatchError
	if errors.As(err, &batchErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "validation_failed",
			Message:    batchErr.Error(),
			Violations: violationDetails(batchErr.Violations),
		})
		return
	}

	switch {
	case shared.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: err.Error()})
	case shared.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()})
	case shared.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case shared.IsTransient(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream_unavailable", Message: "a backing service is unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "an unexpected error occurred"})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func violationDetails(violations []schedule.Violation) []violationDetail {
	details := make([]violationDetail, 0, len(violations))
	for _, v := range violations {
		details = append(details, violationDetail{
			BlockIndex: v.BlockIndex,
			Week:       v.Week,
			Start:      v.Block.Start.Format(timeFormat),
			End:        v.Block.End.Format(timeFormat),
			Reason:     v.Err.Error(),
		})
	}
	return details
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// decodeBody parses and validates a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

// pathUUID parses the named path parameter as a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid %s: must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}
