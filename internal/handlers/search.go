package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dangtran89/finwatch/internal/services"
)

type SearchHandler struct {
	search *services.StockSearchService
}

func NewSearchHandler(search *services.StockSearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// HandleSearch serves stock auto-complete.
// @Summary Search stock symbols
// @Tags stocks
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} map[string]interface{}
// @Router /stocks/search [get]
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
}
