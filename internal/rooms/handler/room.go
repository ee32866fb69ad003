package handler

import (
	"errors"
	"net/http"

	roomserrors "roomsched/internal/rooms/errors"
	"roomsched/internal/rooms/repository"
	apperrors "roomsched/pkg/errors"
	httputil "roomsched/pkg/http"
	"roomsched/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type RoomHandler struct {
	repo repository.RoomRepository
	log  *logger.Logger
}

func NewRoomHandler(repo repository.RoomRepository, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		repo: repo,
		log:  log,
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.repo.FindAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to load rooms", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) GetByIDOrName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	idOrName := ps.ByName("id")

	room, err := h.repo.FindByIDOrName(r.Context(), idOrName)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			err = apperrors.NotFoundWithID("Room", idOrName)
		} else {
			err = apperrors.Internal("Failed to load room", err)
		}
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByIDOrName", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByIDOrName", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.GetAll)
	router.GET("/api/v1/rooms/id/:id", h.GetByIDOrName)
}
