package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theonesud/API-Template/internal/domain"
)

// UserRepository define el contrato de lectura de usuarios que necesita la autenticacion.
type UserRepository interface {
	GetActiveByEmail(ctx context.Context, email string) (domain.User, error)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	db rowQuerier
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: pool}
}

// GetActiveByEmail compara el email sin distinguir mayusculas: el alta de usuarios
// ocurre fuera de este servicio y puede guardar el email tal como lo escribieron.
// Devuelve ErrNotFound si el usuario no existe o fue dado de baja.
func (r *PgUserRepository) GetActiveByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, company_id, deleted, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1) AND deleted = FALSE
	`
	var u domain.User
	err := r.db.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&u.ID,
		&u.Email,
		&u.CompanyID,
		&u.Deleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("userRepo.GetActiveByEmail: %w", err)
	}
	return u, nil
}
