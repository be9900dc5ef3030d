package service_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
	"github.com/bandera-print/backoffice-api/internal/storage"
	"github.com/bandera-print/backoffice-api/internal/testutil"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFileService(t *testing.T, s *testServices, maxBytes int64) *service.FileService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewFileService(
		repository.NewFileRepository(s.db),
		repository.NewProductRepository(s.db),
		repository.NewQuoteRepository(s.db),
		repository.NewOrderRepository(s.db),
		s.activities,
		store,
		service.FileServiceOptions{MaxBytes: maxBytes, ThumbnailSize: 64},
		zap.NewNop(),
	)
}

func TestFileService_ProductImage(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	files := newFileService(t, s, 1<<20)
	category := testutil.CreateCategory(t, s.db, "Banderas")
	product := testutil.CreateProduct(t, s.db, "Bandera", "10", 1, category)

	uploaded, err := files.Upload(ctx, domain.FileEntityProduct, product.ID, "../foto.png", "image/png", bytes.NewReader(pngBytes(t, 300, 200)))
	require.NoError(t, err)
	assert.Equal(t, "foto.png", uploaded.Filename)
	assert.True(t, uploaded.HasThumbnail)

	stored, err := s.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasImage)

	rc, file, err := files.Download(ctx, uploaded.ID, true)
	require.NoError(t, err)
	thumb, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.ContentType)
	cfg, err := png.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, 64)
	assert.LessOrEqual(t, cfg.Height, 64)

	require.NoError(t, files.Delete(ctx, uploaded.ID))
	stored, err = s.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasImage)

	_, _, err = files.Download(ctx, uploaded.ID, false)
	assert.ErrorIs(t, err, service.ErrFileNotFound)
}

func TestFileService_QuoteAttachment(t *testing.T) {
	s := setupServices(t)
	ctx := testutil.UserContext()
	files := newFileService(t, s, 16)
	quote := createSentQuote(t, s)

	t.Run("non image has no thumbnail", func(t *testing.T) {
		uploaded, err := files.Upload(ctx, domain.FileEntityQuote, quote.ID, "arte.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
		require.NoError(t, err)
		assert.False(t, uploaded.HasThumbnail)

		list, err := files.ListByEntity(ctx, domain.FileEntityQuote, quote.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, _, err = files.Download(ctx, uploaded.ID, true)
		assert.ErrorIs(t, err, service.ErrFileNotFound)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := files.Upload(ctx, domain.FileEntityQuote, quote.ID, "big.txt", "text/plain", strings.NewReader(strings.Repeat("x", 17)))
		assert.ErrorIs(t, err, service.ErrFileTooLarge)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := files.Upload(ctx, domain.FileEntityOrder, uuid.New(), "a.txt", "text/plain", strings.NewReader("a"))
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})

	t.Run("unknown entity type", func(t *testing.T) {
		_, err := files.Upload(ctx, domain.FileEntityType("client"), quote.ID, "a.txt", "text/plain", strings.NewReader("a"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
