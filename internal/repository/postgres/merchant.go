package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pelloch/marketplace/internal/entity"
)

type merchantRepository struct {
	db *sqlx.DB
}

func (r *merchantRepository) Create(ctx context.Context, username string) (*entity.Merchant, error) {
	m := &entity.Merchant{
		Username: username,
		Token:    uuid.New().String(),
	}
	err := r.db.QueryRowxContext(ctx,
		"INSERT INTO merchants (username, token) VALUES ($1, $2) RETURNING id",
		m.Username, m.Token,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert merchant: %w", err)
	}
	return m, nil
}

func (r *merchantRepository) FindByToken(ctx context.Context, token string) (*entity.Merchant, error) {
	var m entity.Merchant
	err := r.db.GetContext(ctx, &m,
		"SELECT id, username, token FROM merchants WHERE token = $1", token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant by token: %w", err)
	}
	return &m, nil
}

func (r *merchantRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM merchants"); err != nil {
		return 0, fmt.Errorf("failed to count merchants: %w", err)
	}
	return count, nil
}
