package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/services"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/sirupsen/logrus"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{family.ErrNotFound, http.StatusNotFound, "not_found"},
	{family.ErrAlreadyMarried, http.StatusConflict, "already_married"},
	{family.ErrAlreadyHasBothParents, http.StatusConflict, "already_has_both_parents"},
	{family.ErrParentSlotTaken, http.StatusConflict, "parent_slot_taken"},
	{family.ErrCycle, http.StatusConflict, "cycle"},
	{family.ErrSelfReference, http.StatusBadRequest, "self_reference"},
	{family.ErrInvalidPerson, http.StatusBadRequest, "invalid_person"},
	{storage.ErrInvalidFormat, http.StatusBadRequest, "invalid_format"},
	{services.ErrInvalidMode, http.StatusBadRequest, "invalid_request"},
}

// WriteServiceError maps a domain error onto the API error envelope. Anything
// unrecognised is logged and reported as a 500 without its detail.
func WriteServiceError(w http.ResponseWriter, log *logrus.Logger, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			WriteAPIError(w, e.status, e.code, err.Error())
			return
		}
	}
	log.WithError(err).Error("request failed")
	WriteAPIError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
