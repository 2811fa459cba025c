package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/models"
	"github.com/Mod5ied/eagle-server/internal/store"
)

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when another product already uses the SKU.
	ErrDuplicateSKU = errors.New("a product with this SKU already exists")
)

// ProductRepository stores products in a document collection.
//
// SKU uniqueness is checked by querying before writing. Two concurrent
// writers using the same SKU can both pass the check; the store backends
// have no unique constraint to close that window.
type ProductRepository struct {
	coll   store.Collection
	logger infralogger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewProductRepository(coll store.Collection, log infralogger.Logger) *ProductRepository {
	return &ProductRepository{
		coll:   coll,
		logger: log,
		tracer: otel.Tracer("product-repository"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns every product, newest first.
func (r *ProductRepository) List(ctx context.Context) (products []models.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "product.list")
	defer func() { finishSpan(span, err) }()

	docs, err := r.coll.Find(ctx, store.Query{OrderBy: "createdAt", Descending: true})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products = make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		p, decodeErr := decodeProduct(doc)
		if decodeErr != nil {
			return nil, decodeErr
		}
		products = append(products, *p)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products, nil
}

// Get returns the product with the given id.
func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	doc, err := r.coll.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return decodeProduct(doc)
}

// Add creates a product. Status defaults to active.
func (r *ProductRepository) Add(ctx context.Context, in models.CreateProductInput) (product *models.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "product.add",
		trace.WithAttributes(attribute.String("product.sku", in.SKU)))
	defer func() { finishSpan(span, err) }()

	if err = r.ensureUniqueSKU(ctx, in.SKU, ""); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	now := r.now()
	p := models.Product{
		Name:      in.Name,
		SKU:       in.SKU,
		Price:     deref(in.Price),
		Quantity:  deref(in.Quantity),
		Category:  in.Category,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := encodeProduct(p)
	if err != nil {
		return nil, err
	}

	doc, err := r.coll.Add(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	p.ID = doc.ID
	span.SetAttributes(attribute.String("product.id", p.ID))
	return &p, nil
}

// Update applies the supplied fields of in to the product with the given id.
// A missing product is reported before any SKU conflict.
func (r *ProductRepository) Update(
	ctx context.Context, id string, in models.UpdateProductInput,
) (product *models.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "product.update",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { finishSpan(span, err) }()

	if _, err = r.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if in.Name != nil {
		patch["name"] = *in.Name
	}
	if in.SKU != nil {
		if err = r.ensureUniqueSKU(ctx, *in.SKU, id); err != nil {
			return nil, err
		}
		patch["sku"] = *in.SKU
	}
	if in.Price != nil {
		patch["price"] = *in.Price
	}
	if in.Quantity != nil {
		patch["quantity"] = *in.Quantity
	}
	if in.Category != nil {
		patch["category"] = *in.Category
	}
	if in.Status != nil {
		patch["status"] = string(*in.Status)
	}
	patch["updatedAt"] = r.now()

	return r.patch(ctx, id, patch)
}

// UpdateStatus changes only the status and updatedAt of a product.
func (r *ProductRepository) UpdateStatus(
	ctx context.Context, id string, status models.ProductStatus,
) (product *models.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "product.update_status",
		trace.WithAttributes(
			attribute.String("product.id", id),
			attribute.String("product.status", string(status)),
		))
	defer func() { finishSpan(span, err) }()

	return r.patch(ctx, id, map[string]any{
		"status":    string(status),
		"updatedAt": r.now(),
	})
}

// Delete removes a product. It reports false when the id does not exist.
func (r *ProductRepository) Delete(ctx context.Context, id string) (deleted bool, err error) {
	ctx, span := r.tracer.Start(ctx, "product.delete",
		trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { finishSpan(span, err) }()

	err = r.coll.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete product %s: %w", id, err)
	}
	return true, nil
}

func (r *ProductRepository) patch(ctx context.Context, id string, data map[string]any) (*models.Product, error) {
	err := r.coll.Update(ctx, id, data)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return r.Get(ctx, id)
}

// ensureUniqueSKU fails with ErrDuplicateSKU when a product other than
// excludeID already uses sku.
func (r *ProductRepository) ensureUniqueSKU(ctx context.Context, sku, excludeID string) error {
	docs, err := r.coll.Find(ctx, store.Query{
		Filters: []store.Filter{{Field: "sku", Value: sku}},
	})
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}

	for _, doc := range docs {
		if doc.ID != excludeID {
			r.logger.Debug("SKU already in use",
				infralogger.String("sku", sku),
				infralogger.String("existing_id", doc.ID))
			return ErrDuplicateSKU
		}
	}
	return nil
}

func encodeProduct(p models.Product) (map[string]any, error) {
	data, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	return data, nil
}

func decodeProduct(doc store.Document) (*models.Product, error) {
	var p models.Product
	if err := store.Decode(doc, "id", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// finishSpan ends span, marking it failed for unexpected errors. Missing
// products and SKU conflicts are client outcomes, not faults.
func finishSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrDuplicateSKU) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
