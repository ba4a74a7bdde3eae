package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
	"github.com/dangtran89/finwatch/internal/services"
)

const defaultHistoryLimit = 50

type AssetHandler struct {
	repo      repositories.AssetRepository
	resolver  services.PriceResolver
	validator services.SymbolValidator
	logger    *zap.Logger
}

func NewAssetHandler(repo repositories.AssetRepository, resolver services.PriceResolver, validator services.SymbolValidator, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{repo: repo, resolver: resolver, validator: validator, logger: logger}
}

type addAssetRequest struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"type"`
	Name   string `json:"name"`
}

type assetDetailResponse struct {
	*models.Asset
	History []*models.PricePoint `json:"history"`
}

// HandleAssets serves the asset collection.
// @Summary List or add tracked assets
// @Tags assets
// @Produce json
// @Router /assets [get]
// @Router /assets [post]
func (h *AssetHandler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		h.listAssets(w, r)
	case http.MethodPost:
		h.addAsset(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AssetHandler) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.repo.ListAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(assets)
}

func (h *AssetHandler) addAsset(w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symbol := models.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = models.AssetKindStock
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = symbol
	}

	if kind == models.AssetKindStock {
		validation := h.validator.Validate(r.Context(), symbol)
		if !validation.Valid {
			http.Error(w, fmt.Sprintf("Stock symbol %q not found", symbol), http.StatusBadRequest)
			return
		}
		if validation.DisplayName != "" && validation.DisplayName != symbol {
			name = validation.DisplayName
		}
	}

	asset := &models.Asset{Kind: kind, Symbol: symbol, Name: name}
	created, err := h.repo.GetOrCreate(r.Context(), asset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// initial price fetch, best effort; the scheduler catches up later
	if _, err := h.resolver.Resolve(r.Context(), asset); err != nil {
		h.logger.Warn("initial price fetch failed",
			zap.String("symbol", asset.Symbol),
			zap.Error(err))
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(asset)
}

// HandleAsset serves one asset by id.
// @Summary Get or delete a tracked asset
// @Tags assets
// @Produce json
// @Param id path int true "Asset ID"
// @Router /assets/{id} [get]
// @Router /assets/{id} [delete]
func (h *AssetHandler) HandleAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.assetDetail(w, r, uint(id))
	case http.MethodDelete:
		h.deleteAsset(w, r, uint(id))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AssetHandler) assetDetail(w http.ResponseWriter, r *http.Request, id uint) {
	asset, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	history, err := h.repo.History(r.Context(), asset.ID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(assetDetailResponse{Asset: asset, History: history})
}

func (h *AssetHandler) deleteAsset(w http.ResponseWriter, r *http.Request, id uint) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Asset removed from tracking"})
}
