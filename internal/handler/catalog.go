package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"catalog-proxy-api/internal/service"
	"catalog-proxy-api/pkg/apierror"
	"catalog-proxy-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles the proxy's catalog endpoints. Their response
// shapes are an external contract and are sent without the envelope.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// AssetToBundle handles GET /asset-to-bundle/{assetId}
func (h *CatalogHandler) AssetToBundle(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseID(chi.URLParam(r, "assetId"))
	if err != nil {
		response.Error(w, err)
		return
	}

	summary, err := h.catalog.ResolveBundle(r.Context(), assetID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Plain(w, http.StatusOK, summary)
}

// ItemDetails handles POST /items/details
func (h *CatalogHandler) ItemDetails(w http.ResponseWriter, r *http.Request) {
	var assetIDs []int64
	if err := json.NewDecoder(r.Body).Decode(&assetIDs); err != nil {
		response.Error(w, apierror.BadRequest("request body must be a JSON array of asset ids"))
		return
	}
	defer r.Body.Close()

	items, err := h.catalog.NormalizeItems(r.Context(), assetIDs)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Plain(w, http.StatusOK, items)
}

// LimitedPrice handles GET /rolimons/limited-price/{assetId}
func (h *CatalogHandler) LimitedPrice(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseID(chi.URLParam(r, "assetId"))
	if err != nil {
		response.Error(w, err)
		return
	}

	price, err := h.catalog.LimitedPrice(r.Context(), assetID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Plain(w, http.StatusOK, price)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("assetId must be a positive integer")
	}
	return id, nil
}
