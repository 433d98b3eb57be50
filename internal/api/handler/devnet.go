package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/petbattle/internal/api/request"
	"github.com/mcoot/petbattle/internal/api/response"
	"github.com/mcoot/petbattle/internal/collaborators"
	collabmem "github.com/mcoot/petbattle/internal/collaborators/memory"
	"github.com/mcoot/petbattle/internal/model"
)

// DevnetHandler serves in-process collaborators over the message protocol
type DevnetHandler struct {
	registry *collabmem.Registry
	logger   *slog.Logger
}

// NewDevnetHandler creates a new dev network handler
func NewDevnetHandler(registry *collabmem.Registry, logger *slog.Logger) *DevnetHandler {
	return &DevnetHandler{
		registry: registry,
		logger:   logger,
	}
}

// SetEntity handles PUT /devnet/entities/{address}
func (h *DevnetHandler) SetEntity(w http.ResponseWriter, r *http.Request) {
	address := model.ActorID(mux.Vars(r)["address"])

	var req request.SetEntityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requireField("owner", req.Owner); err != nil {
		WriteError(w, err)
		return
	}

	attrs := make([]model.AttributeID, len(req.Attributes))
	for i, a := range req.Attributes {
		attrs[i] = model.AttributeID(a)
	}
	h.registry.SetEntity(address, model.ActorID(req.Owner), attrs...)

	h.logger.Info("devnet entity set",
		slog.String("address", address.String()),
		slog.String("owner", req.Owner),
		slog.Int("attribute_count", len(attrs)),
	)

	response.NoContent(w)
}

// Handle handles POST /devnet/actors/{address}/handle
func (h *DevnetHandler) Handle(w http.ResponseWriter, r *http.Request) {
	address := model.ActorID(mux.Vars(r)["address"])

	var req collaborators.Request
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	reply, err := h.registry.Handle(r.Context(), address, req)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, reply)
}
