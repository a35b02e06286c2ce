package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/app/core"
)

func TestLocalFileStorage(t *testing.T) {
	dir := t.TempDir()
	fs := SetupObjectStorage(core.ObjectStorageDriver{
		Driver:       "local",
		StaticDomain: "https://static.example.com/",
		Local:        &core.LocalStorageConfig{Dir: dir},
	})
	ctx := context.Background()

	require.NoError(t, fs.SaveFile(ctx, "/exports/c1/1.csv", "text/csv", []byte("timestamp\n")))

	raw, err := fs.DownloadFile(ctx, "/exports/c1/1.csv")
	require.NoError(t, err)
	assert.Equal(t, "timestamp\n", string(raw))

	url, err := fs.GenGetObjectPreSignURL("/exports/c1/1.csv")
	require.NoError(t, err)
	assert.Equal(t, "https://static.example.com/exports/c1/1.csv", url)

	// paths cannot escape the storage dir
	require.NoError(t, fs.SaveFile(ctx, "../../escape.csv", "text/csv", []byte("x")))
	_, err = fs.DownloadFile(ctx, "/escape.csv")
	assert.NoError(t, err)

	require.NoError(t, fs.DeleteFile(ctx, "/exports/c1/1.csv"))
	_, err = fs.DownloadFile(ctx, "/exports/c1/1.csv")
	assert.Error(t, err)
}

func TestNoneFileStorage(t *testing.T) {
	fs := SetupObjectStorage(core.ObjectStorageDriver{})
	assert.ErrorIs(t, fs.SaveFile(context.Background(), "a", "", nil), ErrUnsupported)
	_, err := fs.GenGetObjectPreSignURL("a")
	assert.ErrorIs(t, err, ErrUnsupported)
}
