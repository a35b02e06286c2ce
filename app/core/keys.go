package core

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// JWTKeys RS256 签名密钥对，PEM 格式
type JWTKeys struct {
	Private []byte
	Public  []byte
}

// LoadJWTKeys 配置项可以是 PEM 内容或文件路径；均为空时生成进程内临时密钥
func LoadJWTKeys(cfg Security) (*JWTKeys, error) {
	if cfg.JWTPrivateKey == "" && cfg.JWTPublicKey == "" {
		slog.Warn("jwt keys are not configured, using an ephemeral key pair, tokens will not survive a restart")
		return GenerateJWTKeys()
	}

	private, err := readPEM(cfg.JWTPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load jwt private key, %w", err)
	}
	public, err := readPEM(cfg.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load jwt public key, %w", err)
	}
	return &JWTKeys{Private: private, Public: public}, nil
}

func readPEM(v string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(v), "-----BEGIN") {
		return []byte(v), nil
	}
	return os.ReadFile(v)
}

func GenerateJWTKeys() (*JWTKeys, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	return &JWTKeys{
		Private: pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
		Public:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub}),
	}, nil
}
