package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/TheRealPress1/roamiii-backend/api/responses"
	"github.com/TheRealPress1/roamiii-backend/api/validators"
	"github.com/TheRealPress1/roamiii-backend/internal/messages"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

type postMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// PostMessage appends a chat message to the trip timeline.
func PostMessage(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, userID, err := tripActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input postMessageRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Post(r.Context(), tripID, userID, input.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListMessages returns the trip timeline newest first.
func ListMessages(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuidParam(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := 0
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = value
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		resp, err := svc.List(r.Context(), tripID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
