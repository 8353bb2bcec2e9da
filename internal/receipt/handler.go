package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/receipt/parse"
	"github.com/ameliang/tabsplit/pkg/response"
)

// isInvalidInput reports whether a create failure was caused by the request
// rather than the infrastructure.
func isInvalidInput(err error) bool {
	for _, sentinel := range []error{
		ErrNoLineItems,
		ErrInvalidQuantity,
		ErrNegativePrice,
		ErrInvalidChargeKind,
		ErrNegativeCharge,
		parse.ErrNoItems,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// CompletionChecker is notified after a receipt is marked complete so it can
// decide whether the fully-assigned notification should fire.
type CompletionChecker interface {
	NotifyIfComplete(ctx context.Context, receiptID uuid.UUID) error
}

// Handler handles HTTP requests for receipt operations
type Handler struct {
	service *Service
	checker CompletionChecker
}

// NewHandler creates a new receipt handler
func NewHandler(service *Service, checker CompletionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

// Routes returns the router for receipt endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/complete", h.MarkComplete)

	return r
}

// Create handles POST /receipts
// @Summary      Create a receipt
// @Description  Create a receipt from typed line items and charges, or from raw pasted receipt text
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body CreateReceiptRequest true "Receipt creation request"
// @Success      201 {object} response.APIResponse{data=ReceiptResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /receipts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" {
		response.BadRequest(w, "Title is required")
		return
	}

	receipt, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if isInvalidInput(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create receipt")
		return
	}

	response.JSON(w, http.StatusCreated, receipt.ToResponse())
}

// List handles GET /receipts
// @Summary      List receipts
// @Description  List receipt headers, newest first
// @Tags         receipts
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Results per page"
// @Success      200 {object} response.APIResponse{data=[]ReceiptResponse}
// @Router       /receipts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	receipts, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list receipts")
		return
	}

	resp := make([]*ReceiptResponse, len(receipts))
	for i, receipt := range receipts {
		resp[i] = receipt.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}

// GetByID handles GET /receipts/{id}
// @Summary      Get receipt by ID
// @Description  Get a receipt with all its line items and summary charges
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID"
// @Success      200 {object} response.APIResponse{data=ReceiptResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /receipts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}

	receipt, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrReceiptNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get receipt")
		return
	}

	response.JSON(w, http.StatusOK, receipt.ToResponse())
}

// Delete handles DELETE /receipts/{id}
// @Summary      Delete a receipt
// @Description  Delete a receipt along with its contributions
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /receipts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrReceiptNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete receipt")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MarkComplete handles POST /receipts/{id}/complete
// @Summary      Mark assignments complete
// @Description  Record that the owner considers assignment finished; fires the fully-assigned notification if coverage holds
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID"
// @Success      200 {object} response.APIResponse{data=ReceiptResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /receipts/{id}/complete [post]
func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}

	receipt, err := h.service.MarkComplete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrReceiptNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark receipt complete")
		return
	}

	if h.checker != nil {
		// The flag is already set; a failed notification check should not
		// fail the request.
		if err := h.checker.NotifyIfComplete(r.Context(), id); err != nil {
			slog.Warn("completeness check failed", "receipt_id", id, "error", err)
		}
	}

	response.JSON(w, http.StatusOK, receipt.ToResponse())
}
