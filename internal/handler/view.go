package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/shopping"
)

type ViewHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewViewHandler(svc *shopping.Service, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{svc: svc, logger: logger}
}

func (h *ViewHandler) Sections(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.Sections(r.Context())
	if err != nil {
		h.logger.Error("derive sections", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load sections")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(r.Context())
	if err != nil {
		h.logger.Error("get view", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load view")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type viewRequest struct {
	Sort          *string `json:"sort"`
	HideCompleted *bool   `json:"hide_completed"`
}

func (h *ViewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ctx := r.Context()
	if req.Sort != nil {
		if _, err := h.svc.SetSort(ctx, model.ParseSortOption(*req.Sort)); err != nil {
			h.logger.Error("set sort", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update view")
			return
		}
	}
	if req.HideCompleted != nil {
		if _, err := h.svc.SetHideCompleted(ctx, *req.HideCompleted); err != nil {
			h.logger.Error("set hide completed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update view")
			return
		}
	}

	h.Get(w, r)
}
