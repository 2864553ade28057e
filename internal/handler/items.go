package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/shopping"
)

type ItemHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewItemHandler(svc *shopping.Service, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger}
}

// fail maps service errors onto status codes. Unexpected errors are logged
// and reported as 500 with a generic message.
func (h *ItemHandler) fail(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, shopping.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, shopping.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func (h *ItemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.CategoryCatalog())
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Items(r.Context())
	if err != nil {
		h.fail(w, err, "list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shopping.NewItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.svc.AddItem(r.Context(), req)
	if err != nil {
		h.fail(w, err, "create item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req shopping.ItemEdit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.svc.EditItem(r.Context(), id, req)
	if err != nil {
		h.fail(w, err, "update item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.svc.ToggleCompleted(r.Context(), id)
	if err != nil {
		h.fail(w, err, "toggle item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.DeleteCompleted(r.Context())
	if err != nil {
		h.fail(w, err, "delete completed items")
		return
	}
	if removed == nil {
		removed = []model.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": len(removed),
		"items":   removed,
	})
}

func (h *ItemHandler) AddEssentials(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.AddEssentials(r.Context())
	if err != nil {
		h.fail(w, err, "add essentials")
		return
	}
	writeJSON(w, http.StatusCreated, added)
}
