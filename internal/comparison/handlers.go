package comparison

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/richardnixondev/smartcart/internal/common"
)

// Handler wires the comparison service to HTTP.
type Handler struct {
	Svc *Service
}

// Compare returns the store ranking for one product.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "comparison service not configured", nil)
		return
	}
	id, ok := common.ParseInt64(chi.URLParam(r, "id"))
	if !ok || id < 1 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	result, err := h.Svc.Compare(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
