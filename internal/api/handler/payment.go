package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/middleware"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/payment"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// PaymentHandler handles payment intent creation, the pending-order cache for
// redirect payment flows, and post-payment reconciliation.
type PaymentHandler struct {
	gateway          payment.Gateway
	reconcileService *service.ReconcileService
	pending          *cache.Store[models.PendingOrder]
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gateway payment.Gateway, reconcileService *service.ReconcileService, pending *cache.Store[models.PendingOrder]) *PaymentHandler {
	return &PaymentHandler{
		gateway:          gateway,
		reconcileService: reconcileService,
		pending:          pending,
	}
}

// HandleCreateIntent handles POST /api/payment/create-intent
func (h *PaymentHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req struct {
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if req.Amount <= 0 {
		api.BadRequest(w, "Amount must be positive")
		return
	}

	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		api.BadRequest(w, "Invalid payment method")
		return
	}

	clientSecret, err := h.gateway.CreateIntent(r.Context(), req.Amount, method)
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, struct {
		ClientSecret string `json:"client_secret"`
	}{
		ClientSecret: clientSecret,
	})
}

// HandleVerify handles GET /api/payment/verify. It reports the gateway's
// authoritative view of an intent without creating anything.
func (h *PaymentHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	intentID := r.URL.Query().Get("payment_intent")
	if intentID == "" {
		api.BadRequest(w, "payment_intent is required")
		return
	}

	intent, err := h.gateway.RetrieveIntent(r.Context(), intentID)
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, intent)
}

// HandlePendingOrders handles the server-side draft cache used by redirect
// payment flows: POST parks a draft before the customer leaves for the
// gateway, GET retrieves it afterwards, DELETE abandons it.
func (h *PaymentHandler) HandlePendingOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		api.Unauthorized(w, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.createPendingOrder(w, r, userID)
	case http.MethodGet:
		h.getPendingOrder(w, r, userID)
	case http.MethodDelete:
		h.deletePendingOrder(w, r, userID)
	default:
		api.MethodNotAllowed(w)
	}
}

func (h *PaymentHandler) createPendingOrder(w http.ResponseWriter, r *http.Request, userID string) {
	var draft models.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if len(draft.Cart) == 0 {
		api.BadRequest(w, "Cart cannot be empty")
		return
	}

	token := uuid.NewString()
	h.pending.Put(token, models.PendingOrder{
		Draft:  draft,
		UserID: userID,
	})

	respondJSON(w, struct {
		OrderToken string `json:"order_token"`
	}{
		OrderToken: token,
	})
}

func (h *PaymentHandler) getPendingOrder(w http.ResponseWriter, r *http.Request, userID string) {
	token := r.URL.Query().Get("order_token")
	if token == "" {
		api.BadRequest(w, "order_token is required")
		return
	}

	pending, ok := h.pending.Get(token)
	if !ok || pending.UserID != userID {
		api.NotFound(w, "Pending order not found")
		return
	}

	respondJSON(w, pending.Draft)
}

func (h *PaymentHandler) deletePendingOrder(w http.ResponseWriter, r *http.Request, userID string) {
	token := r.URL.Query().Get("order_token")
	if token == "" {
		api.BadRequest(w, "order_token is required")
		return
	}

	if pending, ok := h.pending.Get(token); ok && pending.UserID == userID {
		h.pending.Delete(token)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReconcile handles POST /api/payment/reconcile. The outcome is
// always a 200 with a status field; reconciliation failures are flow
// states, not transport errors.
func (h *PaymentHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		api.Unauthorized(w, "Unauthorized")
		return
	}

	var req service.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	// The authenticated user always wins over whatever the body claims.
	req.UserID = userID

	outcome := h.reconcileService.Reconcile(r.Context(), req)
	respondJSON(w, outcome)
}
