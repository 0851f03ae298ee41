package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tasks/internal/auth/domain"
	"github.com/allisson/tasks/internal/database"
)

var refreshTokenColumns = []string{"id", "token_hash", "user_id", "expires_at", "revoked_at", "created_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func newTestRefreshToken() *authDomain.RefreshToken {
	now := time.Now().UTC()
	return &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		UserID:    uuid.Must(uuid.NewV7()),
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
}

func TestPostgreSQLRefreshTokenRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)
		token := newTestRefreshToken()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WithArgs(token.ID, token.TokenHash, token.UserID, token.ExpiresAt, nil, token.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(context.Background(), newTestRefreshToken())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create refresh token")
	})

	t.Run("UsesTransactionFromContext", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)
		txManager := database.NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			return repo.Create(ctx, newTestRefreshToken())
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLRefreshTokenRepository_GetByTokenHash(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)
		token := newTestRefreshToken()
		revokedAt := token.CreatedAt.Add(time.Minute)

		rows := sqlmock.NewRows(refreshTokenColumns).AddRow(
			token.ID.String(),
			token.TokenHash,
			token.UserID.String(),
			token.ExpiresAt,
			revokedAt,
			token.CreatedAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = $1")).
			WithArgs(token.TokenHash).
			WillReturnRows(rows)

		found, err := repo.GetByTokenHash(context.Background(), token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token.ID, found.ID)
		assert.Equal(t, token.UserID, found.UserID)
		require.NotNil(t, found.RevokedAt)
		assert.True(t, revokedAt.Equal(*found.RevokedAt))
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByTokenHash(context.Background(), "missing")
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
			WillReturnError(errors.New("boom"))

		_, err := repo.GetByTokenHash(context.Background(), "hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
		assert.Contains(t, err.Error(), "failed to get refresh token by hash")
	})
}

func TestPostgreSQLRefreshTokenRepository_Revoke(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)
		id := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL")).
			WithArgs(now, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Revoke(context.Background(), id, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WillReturnError(errors.New("boom"))

		err := repo.Revoke(context.Background(), uuid.Must(uuid.NewV7()), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to revoke refresh token")
	})

	t.Run("AlreadyRevoked", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Revoke(context.Background(), uuid.Must(uuid.NewV7()), time.Now())
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RowsAffectedError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))

		err := repo.Revoke(context.Background(), uuid.Must(uuid.NewV7()), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get affected rows")
	})
}

func TestPostgreSQLRefreshTokenRepository_RevokeAllByUserID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)
		userID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = $1")).
			WithArgs(now, userID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.RevokeAllByUserID(context.Background(), userID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RowsAffectedError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLRefreshTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))

		_, err := repo.RevokeAllByUserID(context.Background(), uuid.Must(uuid.NewV7()), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get affected rows")
	})
}

func TestMySQLRefreshTokenRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRefreshTokenRepository(db)
	token := newTestRefreshToken()

	idBytes, err := token.ID.MarshalBinary()
	require.NoError(t, err)
	userIDBytes, err := token.UserID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(idBytes, token.TokenHash, userIDBytes, token.ExpiresAt, nil, token.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRefreshTokenRepository_GetByTokenHash(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRefreshTokenRepository(db)
		token := newTestRefreshToken()

		idBytes, err := token.ID.MarshalBinary()
		require.NoError(t, err)
		userIDBytes, err := token.UserID.MarshalBinary()
		require.NoError(t, err)

		rows := sqlmock.NewRows(refreshTokenColumns).
			AddRow(idBytes, token.TokenHash, userIDBytes, token.ExpiresAt, nil, token.CreatedAt)
		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
			WithArgs(token.TokenHash).
			WillReturnRows(rows)

		found, err := repo.GetByTokenHash(context.Background(), token.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, token.ID, found.ID)
		assert.Equal(t, token.UserID, found.UserID)
		assert.Nil(t, found.RevokedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRefreshTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByTokenHash(context.Background(), "missing")
		assert.ErrorIs(t, err, authDomain.ErrRefreshTokenNotFound)
	})

	t.Run("InvalidIDBytes", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLRefreshTokenRepository(db)
		token := newTestRefreshToken()

		rows := sqlmock.NewRows(refreshTokenColumns).
			AddRow([]byte{0x01}, token.TokenHash, []byte{0x02}, token.ExpiresAt, nil, token.CreatedAt)
		mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).WillReturnRows(rows)

		_, err := repo.GetByTokenHash(context.Background(), token.TokenHash)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal refresh token id")
	})
}

func TestMySQLRefreshTokenRepository_Revoke(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "Success", affected: 1},
		{name: "AlreadyRevoked", affected: 0, wantErr: authDomain.ErrRefreshTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewMySQLRefreshTokenRepository(db)
			id := uuid.Must(uuid.NewV7())
			now := time.Now().UTC()

			idBytes, err := id.MarshalBinary()
			require.NoError(t, err)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = ? WHERE id = ?")).
				WithArgs(now, idBytes).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err = repo.Revoke(context.Background(), id, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMySQLRefreshTokenRepository_RevokeAllByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRefreshTokenRepository(db)
	userID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	userIDBytes, err := userID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = ?")).
		WithArgs(now, userIDBytes, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := repo.RevokeAllByUserID(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
