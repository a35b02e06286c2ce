package s3_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/quka-iot/pkg/object-storage/s3"
	"github.com/quka-ai/quka-iot/pkg/testutils"
	"github.com/quka-ai/quka-iot/pkg/types"
)

func newClient(t *testing.T) *s3.S3 {
	testutils.LoadEnvOrPanic()
	if os.Getenv("TEST_QUKA_IOT_S3_BUCKET") == "" {
		t.Skip("TEST_QUKA_IOT_S3_BUCKET not set")
	}
	return s3.NewS3Client(
		os.Getenv("TEST_QUKA_IOT_S3_ENDPOINT"),
		os.Getenv("TEST_QUKA_IOT_S3_REGION"),
		os.Getenv("TEST_QUKA_IOT_S3_BUCKET"),
		os.Getenv("TEST_QUKA_IOT_S3_ACCESS_KEY"),
		os.Getenv("TEST_QUKA_IOT_S3_SECRET_KEY"),
		s3.WithPathStyle(os.Getenv("TEST_QUKA_IOT_S3_PATH_STYLE") == "true"),
	)
}

func TestPresignURLWithoutNetwork(t *testing.T) {
	cli := s3.NewS3Client("http://127.0.0.1:9000", "us-east-1", "quka-iot", "ak", "sk", s3.WithPathStyle(true), s3.WithPresignExpires(time.Minute))

	url, err := cli.GenGetObjectPreSignURL(types.FIXED_EXPORT_PATH_PREFIX + "c1/1700000000.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/quka-iot/exports/c1/1700000000.csv?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestUploadDownloadDelete(t *testing.T) {
	cli := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	key := types.FIXED_EXPORT_PATH_PREFIX + "test/" + time.Now().Format("20060102150405") + ".csv"
	content := []byte("timestamp,temp\n2024-01-01T00:00:00Z,21\n")

	require.NoError(t, cli.UploadBytes(ctx, key, "text/csv", content))
	t.Cleanup(func() {
		cli.Delete(context.Background(), key)
	})

	got, err := cli.GetObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
