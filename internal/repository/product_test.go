package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/models"
	"github.com/Mod5ied/eagle-server/internal/repository"
	"github.com/Mod5ied/eagle-server/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T) *repository.ProductRepository {
	t.Helper()
	return repository.NewProductRepository(store.NewMemoryStore().Collection("products"), infralogger.NewNop())
}

func widget(sku string) models.CreateProductInput {
	return models.CreateProductInput{
		Name:     "Widget",
		SKU:      sku,
		Price:    ptr(9.99),
		Quantity: ptr(5),
		Category: "tools",
	}
}

func TestProductRepository_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	p, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.ProductStatusActive, p.Status)
	assert.InDelta(t, 9.99, p.Price, 1e-9)
	assert.Equal(t, 5, p.Quantity)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.SKU, got.SKU)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestProductRepository_AddKeepsExplicitStatus(t *testing.T) {
	t.Parallel()

	in := widget("W1")
	in.Status = models.ProductStatusInactive

	p, err := newRepo(t).Add(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInactive, p.Status)
}

func TestProductRepository_AddDuplicateSKU(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	first, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)

	dup := widget("W1")
	dup.Name = "Other"
	_, err = repo.Add(ctx, dup)
	require.ErrorIs(t, err, repository.ErrDuplicateSKU)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, "Widget", items[0].Name)
}

func TestProductRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	var ids []string
	for _, sku := range []string{"A1", "B2", "C3"} {
		p, addErr := repo.Add(ctx, widget(sku))
		require.NoError(t, addErr)
		ids = append(ids, p.ID)
		time.Sleep(2 * time.Millisecond)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestProductRepository_UpdatePartial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	p, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	updated, err := repo.Update(ctx, p.ID, models.UpdateProductInput{Quantity: ptr(0)})
	require.NoError(t, err)

	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, "W1", updated.SKU)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(p.CreatedAt))
}

func TestProductRepository_UpdateSKU(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	a, err := repo.Add(ctx, widget("A1"))
	require.NoError(t, err)
	_, err = repo.Add(ctx, widget("B2"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, a.ID, models.UpdateProductInput{SKU: ptr("A1")})
	require.NoError(t, err, "keeping its own sku is not a conflict")

	_, err = repo.Update(ctx, a.ID, models.UpdateProductInput{SKU: ptr("B2")})
	require.ErrorIs(t, err, repository.ErrDuplicateSKU)

	renamed, err := repo.Update(ctx, a.ID, models.UpdateProductInput{SKU: ptr("C3")})
	require.NoError(t, err)
	assert.Equal(t, "C3", renamed.SKU)
}

func TestProductRepository_UpdateMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)

	inputs := []models.UpdateProductInput{
		{},
		{Name: ptr("Renamed")},
		{SKU: ptr("W1")},
	}
	for _, in := range inputs {
		_, err = repo.Update(ctx, "missing", in)
		require.ErrorIs(t, err, repository.ErrProductNotFound)
	}
}

func TestProductRepository_UpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	p, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, p.ID, models.ProductStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInactive, updated.Status)
	assert.Equal(t, p.Name, updated.Name)

	_, err = repo.UpdateStatus(ctx, "missing", models.ProductStatusActive)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	p, err := repo.Add(ctx, widget("W1"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.Get(ctx, p.ID)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

type failingCollection struct {
	store.Collection
}

func (failingCollection) Find(context.Context, store.Query) ([]store.Document, error) {
	return nil, errors.New("connection refused")
}

func TestProductRepository_StoreFailure(t *testing.T) {
	t.Parallel()

	repo := repository.NewProductRepository(failingCollection{}, infralogger.NewNop())

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, repository.ErrProductNotFound)
}
