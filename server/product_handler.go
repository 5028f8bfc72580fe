package server

import (
	"io"
	"net/http"
	"strconv"

	"hbcplayer/logger"
	"hbcplayer/storage"

	"github.com/gorilla/mux"
)

// GetProductHandler returns product metadata for a track identifier.
func (h *APIHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.productRepo.GetProductByID(id)
	if err != nil {
		logger.Error("Failed to get product", logger.Int64("productId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// PreviewHandler streams the preview audio object for a product from
// MinIO.
func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.productRepo.GetProductByID(id)
	if err != nil {
		logger.Error("Failed to get product", logger.Int64("productId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	if product == nil || product.PreviewKey == "" {
		writeError(w, http.StatusNotFound, "Preview not found")
		return
	}

	object, err := storage.OpenPreview(r.Context(), h.cfg.MinioBucket, product.PreviewKey)
	if err != nil {
		logger.Error("Failed to open preview object",
			logger.Int64("productId", id), logger.ErrorField(err))
		writeError(w, http.StatusNotFound, "Preview not found")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("Error streaming preview", logger.Int64("productId", id), logger.ErrorField(err))
	}
}
