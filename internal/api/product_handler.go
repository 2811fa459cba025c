package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Mod5ied/eagle-server/infrastructure/errors"
	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/models"
	"github.com/Mod5ied/eagle-server/internal/repository"
)

// ProductService is the product persistence used by ProductHandler.
type ProductService interface {
	List(ctx context.Context) ([]models.Product, error)
	Add(ctx context.Context, in models.CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in models.UpdateProductInput) (*models.Product, error)
	UpdateStatus(ctx context.Context, id string, status models.ProductStatus) (*models.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.products.List(c.Request.Context())
	if err != nil {
		_ = c.Error(productError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in models.CreateProductInput
	if err := bindJSON(c, &in); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.products.Add(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	logger.FromContext(c.Request.Context()).Info("product_created",
		logger.String("product_id", product.ID),
		logger.String("sku", product.SKU),
	)
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var in models.UpdateProductInput
	if err := bindJSON(c, &in); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	logger.FromContext(c.Request.Context()).Info("product_updated", logger.String("product_id", product.ID))
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var in models.UpdateStatusInput
	if err := bindJSON(c, &in); err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.products.UpdateStatus(c.Request.Context(), id, in.Status)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	logger.FromContext(c.Request.Context()).Info("product_status_updated",
		logger.String("product_id", product.ID),
		logger.String("status", string(product.Status)),
	)
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}
	if !deleted {
		_ = c.Error(apperrors.NotFound("Not found"))
		return
	}

	logger.FromContext(c.Request.Context()).Info("product_deleted", logger.String("product_id", id))
	c.Status(http.StatusNoContent)
}

// productError maps repository errors onto the HTTP error taxonomy.
func productError(err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return apperrors.NotFound("Not found")
	case errors.Is(err, repository.ErrDuplicateSKU):
		return apperrors.Conflict("SKU already exists", err)
	default:
		return apperrors.Internal(err)
	}
}
