package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"fulfillment/pkg/cart/model"
	"fulfillment/pkg/cart/service"
	"fulfillment/pkg/cca"
)

func Router(store service.CartStore, checkout service.CheckoutService) http.Handler {
	h := &handlers{store: store, checkout: checkout}

	r := mux.NewRouter()
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.HandleFunc("/shopping-cart", h.createCart).Methods(http.MethodPost)
	r.HandleFunc("/shopping-cart/{cartID}/item", h.addItem).Methods(http.MethodPost)
	r.HandleFunc("/shopping-cart/{cartID}/checkout", h.checkoutCart).Methods(http.MethodPost)
	return logMiddleware(r)
}

type handlers struct {
	store    service.CartStore
	checkout service.CheckoutService
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Shopping cart service is running")
}

func (h *handlers) createCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "customer_id is required")
		return
	}

	cartID := h.store.CreateCart(*req.CustomerID)
	writeJSON(w, http.StatusCreated, createCartResponse{ShoppingCartID: cartID})
}

func (h *handlers) addItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFromPath(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "product_id and quantity are required")
		return
	}

	if err := h.store.AddItem(cartID, *req.ProductID, *req.Quantity); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *handlers) checkoutCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFromPath(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CreditCardNumber == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "credit_card_number is required")
		return
	}

	orderID, err := h.checkout.Checkout(r.Context(), cartID, req.CreditCardNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{OrderID: orderID})
}

func cartIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	cartID, err := strconv.ParseInt(mux.Vars(r)["cartID"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "cart id must be an integer")
		return 0, false
	}
	return cartID, true
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses and
// stable error codes. An authorizer outage is a 500, never a decline.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrCartNotFound):
		writeError(w, http.StatusNotFound, "CART_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrCartCheckedOut), errors.Is(err, service.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", err.Error())
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, cca.ErrMalformedCard):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, cca.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, "PAYMENT_DECLINED", err.Error())
	default:
		log.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal server error occurred")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
