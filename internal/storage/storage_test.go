package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeback/cashback-backend/internal/config"
)

func TestNewWithoutBucketIsNop(t *testing.T) {
	a, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, a)

	loc, err := a.Put(context.Background(), "exports/x.csv", "text/csv", []byte("a,b"))
	require.NoError(t, err)
	assert.Empty(t, loc)
}

func TestNewWithBucketIsS3(t *testing.T) {
	a, err := New(context.Background(), &config.Config{
		ExportBucket:      "exports",
		S3Region:          "auto",
		S3Endpoint:        "https://account.r2.cloudflarestorage.com",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Archiver{}, a)
}

func TestMemoryCopiesBody(t *testing.T) {
	m := &Memory{}
	body := []byte("hello")
	loc, err := m.Put(context.Background(), "k", "text/plain", body)
	require.NoError(t, err)
	assert.Equal(t, "memory://k", loc)

	body[0] = 'j'
	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "hello", string(got))
}
