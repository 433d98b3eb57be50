package handler

import (
	"net/http"

	"github.com/mcoot/petbattle/internal/api/middleware"
	"github.com/mcoot/petbattle/internal/api/request"
	"github.com/mcoot/petbattle/internal/api/response"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/battle"
)

// BattleHandler handles battle endpoints
type BattleHandler struct {
	dispatcher *battle.Dispatcher
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(dispatcher *battle.Dispatcher) *BattleHandler {
	return &BattleHandler{
		dispatcher: dispatcher,
	}
}

// Get handles GET /api/v1/battle
func (h *BattleHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.dispatcher.State(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BattleFromModel(b))
}

// Register handles POST /api/v1/battle/register
func (h *BattleHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := requireField("entity_id", req.EntityID); err != nil {
		WriteError(w, err)
		return
	}

	h.send(w, r, model.RegisterAction(model.ActorID(req.EntityID)))
}

// Move handles POST /api/v1/battle/move
func (h *BattleHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	h.send(w, r, model.MoveAction(model.Side(req.Side), model.CombatAction(req.Action)))
}

// UpdateInfo handles POST /api/v1/battle/update-info.
// Only the program may update info, so callers are always refused; the
// route exists so the refusal is observable.
func (h *BattleHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, model.UpdateInfoAction())
}

// Reset handles POST /api/v1/battle/reset
func (h *BattleHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, model.ResetContractAction())
}

func (h *BattleHandler) send(w http.ResponseWriter, r *http.Request, action model.Action) {
	actor := middleware.MustGetActor(r.Context())

	event, err := h.dispatcher.Send(r.Context(), model.Message{Source: actor, Action: action})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EventFromModel(event))
}
