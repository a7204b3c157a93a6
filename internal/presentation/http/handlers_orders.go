package httppresentation

import (
	"net/http"

	apporder "github.com/Zhima-Mochi/fooddelivery/internal/application/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/order"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Orders.List(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toOrderResponse(v.Order, v.Status))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Orders.Get(r.Context(), claimsFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(v.Order, v.Status))
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.svc.Orders.Create(r.Context(), apporder.CreateOrderInput{
		CustomerID:      claimsFrom(r.Context()).UserID,
		StoreID:         req.StoreID,
		Items:           req.items(),
		Address:         req.Address,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(res.Order, res.Status))
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.svc.Orders.Checkout(r.Context(), apporder.CheckoutInput{
		CustomerID: claimsFrom(r.Context()).UserID,
		StoreID:    req.StoreID,
		Items:      req.items(),
		Address:    req.Address,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{
		SessionID: res.SessionID,
		URL:       res.URL,
		Order:     toOrderResponse(res.Preview, order.StatusPending),
	})
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Orders.Cancel(r.Context(), apporder.CancelOrderInput{
		OrderID:    chi.URLParam(r, "id"),
		CustomerID: claimsFrom(r.Context()).UserID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o, order.StatusCanceled))
}

func (h *Handler) handleRefundOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Orders.Refund(r.Context(), apporder.RefundOrderInput{
		OrderID:    chi.URLParam(r, "id"),
		CustomerID: claimsFrom(r.Context()).UserID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refundResponse{
		RefundID: res.RefundID,
		Order:    toOrderResponse(res.Order, order.StatusCanceled),
	})
}
