package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quka-ai/quka-iot/app/core"
	"github.com/quka-ai/quka-iot/pkg/object-storage/s3"
)

func Setup(install func(p core.Plugins), mode string) {
	p := provider[mode]
	if p == nil {
		panic("Setup mode not found: " + mode)
	}
	install(p())
}

var provider = make(map[string]core.SetupFunc)

func RegisterProvider(key string, p core.Plugins) {
	provider[key] = func() core.Plugins {
		return p
	}
}

var ErrUnsupported = fmt.Errorf("object storage is not configured")

func SetupObjectStorage(cfg core.ObjectStorageDriver) core.FileStorage {
	switch strings.ToLower(cfg.Driver) {
	case "s3":
		if cfg.S3 == nil {
			panic("object_storage.s3 is required when driver is s3")
		}
		s3Cfg := cfg.S3
		return &S3FileStorage{
			StaticDomain: cfg.StaticDomain,
			S3:           s3.NewS3Client(s3Cfg.Endpoint, s3Cfg.Region, s3Cfg.Bucket, s3Cfg.AccessKey, s3Cfg.SecretKey, s3.WithPathStyle(s3Cfg.UsePathStyle)),
		}
	case "local":
		dir := "./data"
		if cfg.Local != nil && cfg.Local.Dir != "" {
			dir = cfg.Local.Dir
		}
		return &LocalFileStorage{
			StaticDomain: cfg.StaticDomain,
			Dir:          dir,
		}
	default:
		return &NoneFileStorage{}
	}
}

type NoneFileStorage struct{}

func (NoneFileStorage) GetStaticDomain() string {
	return ""
}

func (NoneFileStorage) GenGetObjectPreSignURL(string) (string, error) {
	return "", ErrUnsupported
}

func (NoneFileStorage) SaveFile(context.Context, string, string, []byte) error {
	return ErrUnsupported
}

func (NoneFileStorage) DeleteFile(context.Context, string) error {
	return ErrUnsupported
}

func (NoneFileStorage) DownloadFile(context.Context, string) ([]byte, error) {
	return nil, ErrUnsupported
}

// LocalFileStorage keeps objects under Dir; fullPath is relative to it.
type LocalFileStorage struct {
	StaticDomain string
	Dir          string
}

func (lfs *LocalFileStorage) GetStaticDomain() string {
	return lfs.StaticDomain
}

func (lfs *LocalFileStorage) abs(fullPath string) string {
	return filepath.Join(lfs.Dir, filepath.Clean("/"+fullPath))
}

func (lfs *LocalFileStorage) SaveFile(_ context.Context, fullPath, _ string, content []byte) error {
	target := lfs.abs(fullPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (lfs *LocalFileStorage) DownloadFile(_ context.Context, filePath string) ([]byte, error) {
	raw, err := os.ReadFile(lfs.abs(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return raw, nil
}

func (lfs *LocalFileStorage) DeleteFile(_ context.Context, fullFilePath string) error {
	if err := os.Remove(lfs.abs(fullFilePath)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GenGetObjectPreSignURL local files are served from the static domain as is.
func (lfs *LocalFileStorage) GenGetObjectPreSignURL(fullPath string) (string, error) {
	return strings.TrimSuffix(lfs.StaticDomain, "/") + "/" + strings.TrimPrefix(fullPath, "/"), nil
}

type S3FileStorage struct {
	StaticDomain string
	*s3.S3
}

func (fs *S3FileStorage) GetStaticDomain() string {
	return fs.StaticDomain
}

func (fs *S3FileStorage) SaveFile(ctx context.Context, fullPath, contentType string, content []byte) error {
	return fs.UploadBytes(ctx, fullPath, contentType, content)
}

func (fs *S3FileStorage) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	return fs.GetObject(ctx, filePath)
}

func (fs *S3FileStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	return fs.Delete(ctx, fullFilePath)
}
