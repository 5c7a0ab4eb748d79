// Package httpx provides the HTTP edge of the moderation service: request
// validation, routing, and JSON rendering. Everything interesting happens in
// the service layer; handlers only translate errors to status codes.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/data"
	"github.com/admarket/moderation/internal/service"
)

// ItemRequest is the body shape shared by the listing-scoped endpoints.
type ItemRequest struct {
	ItemID int64 `json:"item_id"`
}

// Validate validates the ItemRequest fields.
func (r *ItemRequest) Validate() error {
	if r.ItemID <= 0 {
		return errors.New("item_id must be positive")
	}
	return nil
}

// PredictHandlers serves the synchronous prediction endpoints.
type PredictHandlers struct {
	Svc *service.PredictService
}

// Predict handles stateless predictions from a full feature payload.
func (h *PredictHandlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req service.PredictRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		return
	}

	decision, err := h.Svc.Predict(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, decision)
}

// SimplePredict handles predictions for a stored listing.
func (h *PredictHandlers) SimplePredict(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		return
	}

	decision, err := h.Svc.PredictListing(r.Context(), req.ItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, decision)
}

// TaskHandlers serves the asynchronous moderation endpoints.
type TaskHandlers struct {
	Submit  *service.SubmitService
	Queries *service.TaskQueryService
}

// AsyncPredict accepts a moderation request and enqueues it.
func (h *TaskHandlers) AsyncPredict(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		return
	}

	if h.Submit == nil {
		writeServiceError(w, core.ErrUnavailable)
		return
	}

	task, err := h.Submit.Submit(r.Context(), req.ItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"task_id": task.ID,
		"status":  task.Status,
		"message": "Moderation request accepted",
	})
}

// ModerationResult returns the current state of a moderation task.
func (h *TaskHandlers) ModerationResult(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.PathValue("task_id"), 10, 64)
	if err != nil || taskID <= 0 {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_path",
			Err: errors.New("task_id must be a positive integer"),
		})
		return
	}

	result, err := h.Queries.Get(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ClosureHandlers serves the listing closure endpoint.
type ClosureHandlers struct {
	Svc *service.ClosureService
}

// CloseAd closes a listing and evicts its cached moderation state.
func (h *ClosureHandlers) CloseAd(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		return
	}

	if err := h.Svc.Close(r.Context(), req.ItemID); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy:
// not-found sentinels to 404, missing collaborators to 503, everything else
// to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, data.ErrListingNotFound),
		errors.Is(err, data.ErrTaskNotFound),
		errors.Is(err, data.ErrSellerNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case errors.Is(err, core.ErrUnavailable):
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "unavailable", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
	}
}
