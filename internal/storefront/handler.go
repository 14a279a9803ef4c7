package storefront

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fileit-code/burg-ecom/internal/cart"
	"github.com/fileit-code/burg-ecom/internal/catalog"
	"github.com/fileit-code/burg-ecom/internal/domain"
)

// Handler exposes the two stores to view code over HTTP. It validates the
// form contract and maps store outcomes to status codes; everything else
// belongs to the stores.
type Handler struct {
	catalog *catalog.Store
	cart    *cart.Store
	logger  *slog.Logger
}

func NewHandler(catalogStore *catalog.Store, cartStore *cart.Store, logger *slog.Logger) *Handler {
	return &Handler{
		catalog: catalogStore,
		cart:    cartStore,
		logger:  logger,
	}
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()
	h.writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) HandleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	h.catalog.Load(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, ok := h.catalog.Fetch(r.Context(), id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	lines := h.cart.Lines()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"lines": lines,
		"total": h.cart.Total(),
	})
}

type addLineRequest struct {
	ProductID int    `json:"productId"`
	Comment   string `json:"comment"`
}

func (h *Handler) HandleAddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "product not in catalog")
		return
	}

	line := h.cart.AddLine(product, req.Comment)
	h.logger.Info("line added", "seq", line.Seq, "product_id", product.ID)
	h.writeJSON(w, http.StatusCreated, line)
}

func (h *Handler) HandleRemoveLine(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid sequence number")
		return
	}

	// Removal of an unknown sequence number is a no-op, so 204 either way.
	h.cart.RemoveLine(seq)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var checkout domain.Checkout
	if err := json.NewDecoder(r.Body).Decode(&checkout); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := validateCheckout(checkout); !ok {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	result := h.cart.Submit(r.Context(), checkout)

	status := http.StatusOK
	if result.Outcome == cart.OutcomeFailed {
		status = http.StatusBadGateway
	}

	h.logger.Info("checkout handled", "outcome", result.Outcome, "reason", result.Reason)
	h.writeJSON(w, status, result)
}

func validateCheckout(checkout domain.Checkout) (string, bool) {
	if n := len(checkout.PhoneNumber); n < 9 || n > 15 {
		return "phone number must have 9 to 15 digits", false
	}
	for _, c := range checkout.PhoneNumber {
		if c < '0' || c > '9' {
			return "phone number must contain only digits", false
		}
	}

	switch checkout.DeliveryType {
	case domain.DeliveryTypeDelivery:
		if checkout.Address == "" {
			return "address is required for delivery", false
		}
	case domain.DeliveryTypePickup:
	default:
		return "unknown delivery type", false
	}

	switch checkout.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodHosted:
	default:
		return "unknown payment method", false
	}

	return "", true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
