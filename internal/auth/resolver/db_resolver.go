package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"steam-auth-service/internal/auth"
	"steam-auth-service/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the database.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

// Resolve returns the user owning identity, creating it on first login.
// Profile facts (display name, avatar) are refreshed on every login since
// providers such as Steam let users change them at any time.
func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}
	if identity.Provider == "" || identity.ProviderUserID == "" {
		return "", errors.New("identity missing provider or provider_user_id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("resolver: begin: %w", err)
	}
	defer tx.Rollback()

	userID, err := r.resolve(ctx, tx, identity)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("resolver: commit: %w", err)
	}

	return userID.String(), nil
}

func (r *DBResolver) resolve(ctx context.Context, tx *sql.Tx, identity *auth.Identity) (uuid.UUID, error) {
	// 1. Known identity (provider + provider_user_id)
	var userID uuid.UUID
	err := tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET display_name = $2, avatar_url = $3, updated_at = NOW()
			WHERE id = $1
		`,
			userID,
			identity.DisplayName,
			identity.AvatarURL,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolver: refresh user: %w", err)
		}
		return userID, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("resolver: lookup identity: %w", err)
	}

	// 2. Link to an existing user by verified email (never for steam,
	// which releases no email)
	if identity.Email != "" && identity.EmailVerified {
		err = tx.QueryRowContext(ctx, `
			SELECT id
			FROM users
			WHERE LOWER(email) = LOWER($1)
		`,
			identity.Email,
		).Scan(&userID)

		if err == nil {
			return userID, r.insertIdentity(ctx, tx, userID, identity)
		}

		if !errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("resolver: lookup email: %w", err)
		}
	}

	// 3. Create new user
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (display_name, avatar_url, email, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		identity.DisplayName,
		identity.AvatarURL,
		sql.NullString{String: identity.Email, Valid: identity.Email != ""},
		identity.EmailVerified,
	).Scan(&userID)

	if err != nil {
		return uuid.Nil, fmt.Errorf("resolver: create user: %w", err)
	}

	return userID, r.insertIdentity(ctx, tx, userID, identity)
}

func (r *DBResolver) insertIdentity(ctx context.Context, tx *sql.Tx, userID uuid.UUID, identity *auth.Identity) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id, profile_url)
		VALUES ($1, $2, $3, $4)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
		identity.ProfileURL,
	)
	if err != nil {
		return fmt.Errorf("resolver: link identity: %w", err)
	}
	return nil
}
