package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/petbattle/internal/api/response"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// NotificationHandler serves actor mailboxes
type NotificationHandler struct {
	storage storage.Storage
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(storage storage.Storage) *NotificationHandler {
	return &NotificationHandler{
		storage: storage,
	}
}

// List handles GET /api/v1/actors/{address}/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := model.ActorID(mux.Vars(r)["address"])

	list, err := h.storage.GetNotifications(r.Context(), actor)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NotificationListFromModel(actor, list))
}
