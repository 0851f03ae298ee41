package service

import (
	"context"
	"encoding/base64"
	"strings"

	"gocloud.dev/secrets"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	apperrors "github.com/allisson/tasks/internal/errors"

	// Register the keeper drivers accepted in KMS_KEY_URI.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
// Supported schemes: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open KMS keeper")
	}
	return keeper, nil
}

// LoadSigningSecret returns the raw access token secret. Without a KMS key
// URI the configured value is used as is; otherwise it is treated as base64
// keeper ciphertext and decrypted.
func LoadSigningSecret(ctx context.Context, kms KMSService, secret, kmsKeyURI string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, authDomain.ErrMissingSigningKey
	}
	if kmsKeyURI == "" {
		return []byte(secret), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "jwt secret key is not valid base64 ciphertext")
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt jwt secret key")
	}
	return plaintext, nil
}

// EncryptSigningSecret wraps a secret with the keeper at kmsKeyURI and
// returns base64 ciphertext suitable for JWT_SECRET_KEY.
func EncryptSigningSecret(ctx context.Context, kms KMSService, secret, kmsKeyURI string) (string, error) {
	if secret == "" {
		return "", authDomain.ErrMissingSigningKey
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, []byte(secret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt jwt secret key")
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
