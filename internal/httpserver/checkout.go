package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"storefront/internal/idempotency"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

type checkoutRequest struct {
	ShippingAddress string  `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
	CartIDs         []int64 `json:"cartIds"`
}

type checkoutResponse struct {
	Message string `json:"message"`
	*checkout.Receipt
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	user := currentUser(c)
	ctx := c.Request.Context()

	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	scope := "checkout:" + strconv.FormatInt(user.ID, 10)
	fingerprint := req.fingerprint()
	claimed := false
	if key != "" && h.deps.Idempotency != nil {
		stored, err := h.deps.Idempotency.Claim(ctx, scope, key, fingerprint)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "a checkout with this Idempotency-Key is already in progress"})
			return
		case errors.Is(err, idempotency.ErrKeyReused):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key was already used with a different request body"})
			return
		case err != nil:
			h.internalError(c, "idempotency store unavailable", err)
			return
		case stored != nil:
			c.Data(http.StatusCreated, "application/json; charset=utf-8", stored)
			return
		}
		claimed = true
		// The claim must outlive the checkout it guards.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deps.Idempotency.LockTTL())
		defer cancel()
	}

	receipt, err := h.deps.CheckoutSvc.Checkout(ctx, checkout.Request{
		UserID:          user.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CartLineIDs:     req.CartIDs,
	})
	if err != nil {
		if claimed {
			if relErr := h.deps.Idempotency.Release(context.WithoutCancel(ctx), scope, key); relErr != nil {
				h.logger.Printf("http: idempotency release failed request_id=%s err=%v", requestID(c), relErr)
			}
		}
		h.checkoutError(c, err)
		return
	}

	payload, err := json.Marshal(checkoutResponse{Message: "order placed", Receipt: receipt})
	if err != nil {
		h.internalError(c, "failed to encode receipt", err)
		return
	}
	if claimed {
		if err := h.deps.Idempotency.Complete(context.WithoutCancel(ctx), scope, key, fingerprint, payload); err != nil {
			h.logger.Printf("http: idempotency complete failed request_id=%s order_id=%d err=%v", requestID(c), receipt.OrderID, err)
		}
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", payload)
}

// fingerprint identifies the order a request would place. Whitespace around
// the text fields and the order of cart ids do not change it.
func (r checkoutRequest) fingerprint() string {
	var ids []int64
	if len(r.CartIDs) > 0 {
		ids = slices.Clone(r.CartIDs)
		slices.Sort(ids)
	}
	b, _ := json.Marshal(checkoutRequest{
		ShippingAddress: strings.TrimSpace(r.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(r.PaymentMethod),
		CartIDs:         ids,
	})
	return idempotency.Fingerprint(b)
}

// checkoutError maps checkout failures onto status codes. The transaction has already
// been rolled back by the time it runs.
func (h *handlers) checkoutError(c *gin.Context, err error) {
	var shortfall *checkout.StockShortfallError
	switch {
	case errors.Is(err, checkout.ErrInvalidRequest), errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &shortfall):
		c.JSON(http.StatusBadRequest, gin.H{"error": shortfall.Error()})
	default:
		h.internalError(c, persistenceMessage(err), err)
	}
}

func persistenceMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "duplicate order"
		case "23503":
			return "referenced data not found"
		}
	}
	return "checkout failed due to a server error"
}
