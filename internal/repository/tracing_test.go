package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/models"
	"github.com/Mod5ied/eagle-server/internal/store"
)

func TestProductRepository_Spans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	repo := NewProductRepository(store.NewMemoryStore().Collection("products"), infralogger.NewNop())
	repo.tracer = provider.Tracer("test")

	ctx := context.Background()
	price, qty := 1.5, 1
	in := models.CreateProductInput{Name: "Bolt", SKU: "B1", Price: &price, Quantity: &qty, Category: "parts"}

	_, err := repo.Add(ctx, in)
	require.NoError(t, err)
	_, err = repo.Add(ctx, in)
	require.ErrorIs(t, err, ErrDuplicateSKU)
	_, err = repo.List(ctx)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "product.add", spans[0].Name())
	assert.Equal(t, "product.add", spans[1].Name())
	assert.Equal(t, "product.list", spans[2].Name())
	assert.NotEqual(t, codes.Error, spans[1].Status().Code, "conflicts are not span errors")
}
