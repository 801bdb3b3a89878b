package battle

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/richardnixondev/smartcart/internal/common"
)

// Handler wires the battle service to HTTP.
type Handler struct {
	Svc *Service
}

// Standings returns the store leaderboard, optionally restricted to one
// category via the "category_id" query parameter. Setting "include_zero"
// keeps stores with no priced products on the board.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "battle service not configured", nil)
		return
	}
	var categoryID *int64
	if v := strings.TrimSpace(r.URL.Query().Get("category_id")); v != "" {
		id, ok := common.ParseInt64(v)
		if !ok || id < 1 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "category_id must be a positive integer", nil)
			return
		}
		categoryID = &id
	}
	includeZero := false
	if v := strings.TrimSpace(r.URL.Query().Get("include_zero")); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "include_zero must be a boolean", nil)
			return
		}
		includeZero = parsed
	}
	result, err := h.Svc.Aggregate(r.Context(), categoryID, includeZero)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
