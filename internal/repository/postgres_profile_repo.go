package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/storeman/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByIdentityID はIdPのユーザーID（supabase_id）でプロフィールを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByIdentityID(ctx context.Context, identityID string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, supabase_id, email, name, phone, role, created_at
		 FROM users
		 WHERE supabase_id = $1`,
		identityID,
	).Scan(&profile.ID, &profile.IdentityID, &profile.Email, &profile.Name, &profile.Phone, &profile.Role, &profile.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by identity ID: %w", err)
	}

	return profile, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
