package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// TokenRevoker revokes every refresh token of a user.
type TokenRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RunRevokeUserTokens revokes the refresh tokens of userID and reports how
// many were active. Access tokens already issued stay valid until they expire.
func RunRevokeUserTokens(
	ctx context.Context,
	revoker TokenRevoker,
	logger *slog.Logger,
	w io.Writer,
	userID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	count, err := revoker.RevokeAll(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	logger.Info("revoked user tokens",
		slog.String("user_id", id.String()),
		slog.Int64("count", count),
	)

	return writeResult(
		w,
		format,
		fmt.Sprintf("Revoked %d refresh token(s) for user %s", count, id),
		map[string]any{"user_id": id.String(), "revoked": count},
	)
}
