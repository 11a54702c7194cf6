package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

type patchVariantRequest struct {
	ColorName     *string `json:"colorName"`
	ColorHex      *string `json:"colorHex"`
	ImageURL      *string `json:"representativeImageUrl"`
	DiscountRate  *int    `json:"discountRate"`
	SaleStartDate *string `json:"saleStartDate"`
	SaleEndDate   *string `json:"saleEndDate"`
	ClearSale     bool    `json:"clearSale"`
}

func (r patchVariantRequest) toPatch() (productrepo.VariantPatch, error) {
	patch := productrepo.VariantPatch{
		ColorName:    r.ColorName,
		ColorHex:     r.ColorHex,
		ImageURL:     r.ImageURL,
		DiscountRate: r.DiscountRate,
		ClearSale:    r.ClearSale,
	}
	var err error
	if patch.SaleStartDate, err = parseSaleDate("saleStartDate", r.SaleStartDate); err != nil {
		return patch, err
	}
	if patch.SaleEndDate, err = parseSaleDate("saleEndDate", r.SaleEndDate); err != nil {
		return patch, err
	}
	return patch, nil
}

// parseSaleDate accepts RFC 3339 timestamps or plain dates. A bare date means midnight UTC.
func parseSaleDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be an RFC 3339 timestamp or YYYY-MM-DD", field)
}

func (h *handlers) patchVariant(c *gin.Context) {
	variantID, ok := pathID(c, "variantId")
	if !ok {
		return
	}

	var req patchVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	variant, err := h.deps.ProductSvc.PatchVariant(c.Request.Context(), variantID, patch)
	switch {
	case errors.Is(err, productsvc.ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "variant not found"})
		return
	case err != nil:
		h.internalError(c, "failed to update variant", err)
		return
	}

	h.logger.Printf("http: variant patched request_id=%s variant_id=%d by=%d", requestID(c), variantID, currentUser(c).ID)
	c.JSON(http.StatusOK, variant)
}
