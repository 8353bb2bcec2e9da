package history

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/pkg/response"
)

// Handler handles HTTP requests for breakdown history
type Handler struct {
	store *Store
}

// NewHandler creates a new history handler
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Routes returns the router for history endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{receiptId}", h.ListByReceipt)
	r.Get("/{receiptId}/{snapshotId}", h.Get)

	return r
}

// ListByReceipt handles GET /history/{receiptId}
// @Summary      List stored breakdowns for a receipt
// @Tags         history
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Success      200 {object} response.APIResponse{data=[]Snapshot}
// @Router       /history/{receiptId} [get]
func (h *Handler) ListByReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID, err := uuid.Parse(chi.URLParam(r, "receiptId"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}

	snapshots, err := h.store.ListByReceipt(r.Context(), receiptID)
	if err != nil {
		response.InternalError(w, "Failed to list snapshots")
		return
	}

	response.JSON(w, http.StatusOK, snapshots)
}

// Get handles GET /history/{receiptId}/{snapshotId}
// @Summary      Get one stored breakdown
// @Description  Redisplay a breakdown exactly as it was computed
// @Tags         history
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        snapshotId path string true "Snapshot ID"
// @Success      200 {object} response.APIResponse{data=Snapshot}
// @Failure      404 {object} response.APIResponse
// @Router       /history/{receiptId}/{snapshotId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	receiptID, err := uuid.Parse(chi.URLParam(r, "receiptId"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}
	snapshotID, err := uuid.Parse(chi.URLParam(r, "snapshotId"))
	if err != nil {
		response.BadRequest(w, "Invalid snapshot ID")
		return
	}

	snapshot, err := h.store.Get(r.Context(), receiptID, snapshotID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get snapshot")
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}
