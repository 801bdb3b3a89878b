package prices

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/richardnixondev/smartcart/internal/common"
)

// Handler wires the history service to HTTP.
type Handler struct {
	Svc *Service
}

// History returns a product's per-store price history. The optional "days"
// query parameter sizes the trailing window.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "prices service not configured", nil)
		return
	}
	id, ok := common.ParseInt64(chi.URLParam(r, "id"))
	if !ok || id < 1 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	days := 0
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		days = common.AtoiDefault(v, 0)
		if days < 1 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "days must be a positive integer", nil)
			return
		}
	}
	result, err := h.Svc.History(r.Context(), id, days)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
