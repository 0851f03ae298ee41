package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authService "github.com/allisson/tasks/internal/auth/service"
)

// RunEncryptJWTSecret wraps secret with the keeper at kmsKeyURI and prints
// the base64 ciphertext to paste into JWT_SECRET_KEY alongside KMS_KEY_URI.
// The plaintext secret is never logged.
func RunEncryptJWTSecret(
	ctx context.Context,
	kms authService.KMSService,
	logger *slog.Logger,
	w io.Writer,
	secret string,
	kmsKeyURI string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if kmsKeyURI == "" {
		return fmt.Errorf("kms key uri is required")
	}

	ciphertext, err := authService.EncryptSigningSecret(ctx, kms, secret, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to encrypt jwt secret: %w", err)
	}

	logger.Info("jwt secret encrypted")

	return writeResult(
		w,
		format,
		"JWT_SECRET_KEY="+ciphertext,
		map[string]string{"jwt_secret_key": ciphertext},
	)
}
