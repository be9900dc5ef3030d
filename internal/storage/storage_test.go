package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/config"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, size, err := s.Upload(ctx, "quotes/abc", "Arte Final.PDF", "application/pdf", strings.NewReader("artwork"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)
	assert.True(t, strings.HasPrefix(key, "quotes/abc/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "artwork", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, _, err := s.Upload(ctx, "../../etc", "x.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "etc/"))

	_, err = s.Download(ctx, "../../../etc/passwd")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "s3"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
