package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/receipt/{receiptId}", h.ListByReceipt)
	r.Post("/{id}/read", h.MarkAsRead)

	return r
}

// NotificationResponse represents the response for a notification
type NotificationResponse struct {
	ID        int64  `json:"id"`
	ReceiptID string `json:"receipt_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func toResponse(n *Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		ReceiptID: n.ReceiptID.String(),
		Kind:      string(n.Kind),
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ListByReceipt handles GET /notifications/receipt/{receiptId}
// @Summary      List notifications for a receipt
// @Tags         notifications
// @Produce      json
// @Param        receiptId path string true "Receipt ID"
// @Param        unread_only query bool false "Only unread notifications"
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Router       /notifications/receipt/{receiptId} [get]
func (h *Handler) ListByReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID, err := uuid.Parse(chi.URLParam(r, "receiptId"))
	if err != nil {
		response.BadRequest(w, "Invalid receipt ID")
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, err := h.service.ListByReceiptID(r.Context(), receiptID, unreadOnly)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	resp := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = toResponse(n)
	}

	response.JSON(w, http.StatusOK, resp)
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
