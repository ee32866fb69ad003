package handler

import (
	"encoding/json"
	"net/http"

	"roomsched/internal/meetings/service"
	httputil "roomsched/pkg/http"
	"roomsched/pkg/logger"
	"roomsched/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MeetingHandler struct {
	optimizer service.MeetingOptimizer
	log       *logger.Logger
}

func NewMeetingHandler(optimizer service.MeetingOptimizer, log *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		optimizer: optimizer,
		log:       log,
	}
}

// Optimize runs the room search without committing anything: clients use it
// to preview the recommendation before posting a booking.
func (h *MeetingHandler) Optimize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Optimize", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	plan, err := h.optimizer.FindOptimalMeeting(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Optimize", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, plan); err != nil {
		h.log.Error("failed to write success response", "handler", "Optimize", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/meetings/optimize", h.Optimize)
}
