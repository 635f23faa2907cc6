package handlers

import (
	"net/http"

	"woosync/internal/common"
	"woosync/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProductHandlers serves the read-only view of mirrored products
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type ProductListResponse struct {
	StoreID  uuid.UUID                    `json:"store_id"`
	Count    int                          `json:"count"`
	Products []services.ProductWithImages `json:"products"`
}

// ListStoreProducts handles GET /v1/stores/:id/products
// @Summary List mirrored products of a store
// @Tags products
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} ProductListResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/stores/{id}/products [get]
func (h *ProductHandlers) ListStoreProducts(c echo.Context) error {
	storeID, err := common.ValidateUUID(c.Param("id"), "store id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, err.Error())
	}

	products, err := h.productService.ListByStore(c.Request().Context(), storeID)
	if err != nil {
		return common.SendError(c, services.HTTPStatus(err), err.Error())
	}

	return c.JSON(http.StatusOK, ProductListResponse{
		StoreID:  storeID,
		Count:    len(products),
		Products: products,
	})
}
