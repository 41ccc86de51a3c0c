package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ozownz/meme-battles/middleware"
	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/services"
)

type BattleHandler struct {
	battleService      services.BattleService
	participantService services.ParticipantService
}

func NewBattleHandler(bs services.BattleService, ps services.ParticipantService) *BattleHandler {
	return &BattleHandler{
		battleService:      bs,
		participantService: ps,
	}
}

// CreateHandler обрабатывает POST /battles
func (h *BattleHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create battle")
		return
	}
	currentUserEmail, _ := middleware.GetUserEmailFromContext(r.Context())

	var input services.CreateBattleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	battle, err := h.battleService.CreateBattle(r.Context(), currentUserID, currentUserEmail, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"battle": battle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /battles
func (h *BattleHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter services.ListBattlesFilter
	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.BattleStatus(statusStr)
		filter.Status = &status
	}

	if createdByStr := query.Get("created_by"); createdByStr != "" {
		if id, err := strconv.Atoi(createdByStr); err == nil && id > 0 {
			filter.CreatedBy = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid created_by query parameter"))
			return
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	battles, err := h.battleService.ListBattles(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"battles": battles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /battles/{battleID}
func (h *BattleHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.battleService.GetBattleDetails(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, details, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceStatusHandler обрабатывает POST /battles/{battleID}/advance
func (h *BattleHandler) AdvanceStatusHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	currentUserEmail, _ := middleware.GetUserEmailFromContext(r.Context())

	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	newStatus, err := h.battleService.AdvanceBattleStatus(r.Context(), id, currentUserID, currentUserEmail)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"battle_id": id,
		"status":    newStatus,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /battles/{battleID}
func (h *BattleHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	currentUserEmail, _ := middleware.GetUserEmailFromContext(r.Context())

	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.battleService.DeleteBattle(r.Context(), id, currentUserID, currentUserEmail); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// JoinHandler обрабатывает POST /battles/{battleID}/join
func (h *BattleHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to join battle")
		return
	}

	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.JoinBattle(r.Context(), id, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InviteHandler обрабатывает POST /battles/{battleID}/invite
func (h *BattleHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	currentUserEmail, _ := middleware.GetUserEmailFromContext(r.Context())

	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.battleService.InviteToBattle(r.Context(), id, currentUserID, currentUserEmail, input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := map[string]string{"message": "Приглашение отправлено"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListParticipantsHandler обрабатывает GET /battles/{battleID}/participants
func (h *BattleHandler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListByBattle(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
