package assignment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
	"github.com/ameliang/tabsplit/internal/receipt"
	"github.com/ameliang/tabsplit/pkg/middleware"
	"github.com/ameliang/tabsplit/pkg/response"
)

// Handler handles HTTP requests for assignment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new assignment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for assignment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{receiptId}", h.GetTable)
	r.Get("/{receiptId}/fully-assigned", h.FullyAssigned)
	r.Post("/{receiptId}/breakdown", h.ComputeBreakdown)

	r.Post("/{receiptId}/items/{itemIndex}/contributions", h.AddContribution)
	r.Put("/{receiptId}/items/{itemIndex}/contributions/{contribIndex}", h.UpdateContribution)
	r.Delete("/{receiptId}/items/{itemIndex}/contributions/{contribIndex}", h.RemoveContribution)

	return r
}

// GetTable handles GET /assignments/{receiptId}
// @Summary      Get the assignment table
// @Description  Get all contributions for a receipt, grouped by item index
// @Tags         assignments
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Success      200 {object} response.APIResponse{data=TableResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /assignments/{receiptId} [get]
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}

	claims, err := h.service.Get(r.Context(), receiptID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toTableResponse(receiptID, claims))
}

// AddContribution handles POST /assignments/{receiptId}/items/{itemIndex}/contributions
// @Summary      Claim units of a line item
// @Description  Append a contribution; rejected atomically if it would exceed the item's quantity
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        itemIndex path int true "Line item index"
// @Param        request body AddContributionRequest true "Claim"
// @Success      201 {object} response.APIResponse{data=TableResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /assignments/{receiptId}/items/{itemIndex}/contributions [post]
func (h *Handler) AddContribution(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	itemIndex, ok := h.indexParam(w, r, "itemIndex")
	if !ok {
		return
	}

	var req AddContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	contributor := req.Contributor
	if contributor == "" {
		contributor, _ = middleware.GetContributor(r.Context())
	}

	claims, err := h.service.Add(r.Context(), receiptID, itemIndex, contributor, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toTableResponse(receiptID, claims))
}

// UpdateContribution handles PUT /assignments/{receiptId}/items/{itemIndex}/contributions/{contribIndex}
// @Summary      Edit a contribution
// @Description  Change a claim's contributor or quantity; on rejection the prior value is kept
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        itemIndex path int true "Line item index"
// @Param        contribIndex path int true "Contribution index"
// @Param        request body UpdateContributionRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=TableResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /assignments/{receiptId}/items/{itemIndex}/contributions/{contribIndex} [put]
func (h *Handler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	itemIndex, ok := h.indexParam(w, r, "itemIndex")
	if !ok {
		return
	}
	contribIndex, ok := h.indexParam(w, r, "contribIndex")
	if !ok {
		return
	}

	var req UpdateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	claims, err := h.service.Update(r.Context(), receiptID, itemIndex, contribIndex, req.Contributor, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toTableResponse(receiptID, claims))
}

// RemoveContribution handles DELETE /assignments/{receiptId}/items/{itemIndex}/contributions/{contribIndex}
// @Summary      Remove a contribution
// @Tags         assignments
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        itemIndex path int true "Line item index"
// @Param        contribIndex path int true "Contribution index"
// @Success      200 {object} response.APIResponse{data=TableResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /assignments/{receiptId}/items/{itemIndex}/contributions/{contribIndex} [delete]
func (h *Handler) RemoveContribution(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	itemIndex, ok := h.indexParam(w, r, "itemIndex")
	if !ok {
		return
	}
	contribIndex, ok := h.indexParam(w, r, "contribIndex")
	if !ok {
		return
	}

	claims, err := h.service.Remove(r.Context(), receiptID, itemIndex, contribIndex)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toTableResponse(receiptID, claims))
}

// FullyAssigned handles GET /assignments/{receiptId}/fully-assigned
// @Summary      Check whether every item is assigned
// @Description  Evaluate coverage under the requested policy: ANY_CLAIM (default) or EXACT_QUANTITY
// @Tags         assignments
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        policy query string false "Coverage policy"
// @Success      200 {object} response.APIResponse{data=FullyAssignedResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /assignments/{receiptId}/fully-assigned [get]
func (h *Handler) FullyAssigned(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}

	assigned, policy, err := h.service.FullyAssigned(r.Context(), receiptID, r.URL.Query().Get("policy"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &FullyAssignedResponse{
		FullyAssigned: assigned,
		Policy:        string(policy),
	})
}

// ComputeBreakdown handles POST /assignments/{receiptId}/breakdown
// @Summary      Compute the per-contributor bill
// @Description  Price every claim, allocate tax and tip proportionally, and store the result in the history
// @Tags         assignments
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Success      200 {object} response.APIResponse{data=BreakdownResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /assignments/{receiptId}/breakdown [post]
func (h *Handler) ComputeBreakdown(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := h.receiptID(w, r)
	if !ok {
		return
	}

	breakdown, snapshotID, err := h.service.Breakdown(r.Context(), receiptID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toBreakdownResponse(receiptID, snapshotID, breakdown))
}

func (h *Handler) receiptID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "receiptId"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "Invalid "+name)
		return 0, false
	}
	return idx, true
}

// writeError maps the error taxonomy onto HTTP statuses: rejected claims are
// 400, missing indices are 404, and malformed ledger data reaching the
// calculator is 422 since it signals an upstream bug rather than a bad
// request.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var inputErr *split.InputError

	switch {
	case errors.As(err, &validationErr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error())
	case errors.As(err, &notFoundErr):
		response.NotFound(w, notFoundErr.Error())
	case errors.Is(err, receipt.ErrReceiptNotFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &inputErr):
		response.UnprocessableEntity(w, inputErr.Error())
	default:
		response.InternalError(w, "Assignment operation failed")
	}
}
