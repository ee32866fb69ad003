package handler

import (
	"net/http"

	"roomsched/internal/tickets/service"
	httputil "roomsched/pkg/http"
	"roomsched/pkg/logger"
	"roomsched/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type TicketHandler struct {
	service service.TicketService
	log     *logger.Logger
}

func NewTicketHandler(service service.TicketService, log *logger.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log,
	}
}

func (h *TicketHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ticket, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ticket); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TicketHandler) Purchase(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.service.Purchase(r.Context(), ps.ByName("id"), middleware.UserID(r.Context()))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Purchase", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, order); err != nil {
		h.log.Error("failed to write created response", "handler", "Purchase", "operation", "WriteCreated", "error", err)
	}
}

func (h *TicketHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/tickets/id/:id", h.GetByID)
	router.POST("/api/v1/tickets/id/:id/purchase", h.Purchase)
}
