package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theonesud/API-Template/internal/domain"
)

// SessionRepository persiste las sesiones de login. Toda escritura corre en una
// unica transaccion por operacion logica.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, loginTime time.Time) (domain.Session, error)
	InvalidateAll(ctx context.Context, userID int64) (int64, error)
	Rotate(ctx context.Context, userID int64, loginTime time.Time) (domain.Session, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Session, error)
}

type sessionDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgSessionRepository implementa SessionRepository usando pgxpool.
type PgSessionRepository struct {
	db sessionDB
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{db: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, userID int64, loginTime time.Time) (domain.Session, error) {
	var session domain.Session
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		session, err = insertSession(ctx, tx, userID, loginTime)
		return err
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return session, nil
}

// InvalidateAll marca como borradas todas las sesiones activas del usuario.
func (r *PgSessionRepository) InvalidateAll(ctx context.Context, userID int64) (int64, error) {
	var affected int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		affected, err = invalidateSessions(ctx, tx, userID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("sessionRepo.InvalidateAll: %w", err)
	}
	return affected, nil
}

// Rotate invalida las sesiones previas y crea una nueva de forma atomica.
func (r *PgSessionRepository) Rotate(ctx context.Context, userID int64, loginTime time.Time) (domain.Session, error) {
	var session domain.Session
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := invalidateSessions(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		session, err = insertSession(ctx, tx, userID, loginTime)
		return err
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("sessionRepo.Rotate: %w", err)
	}
	return session, nil
}

func (r *PgSessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	const query = `
		SELECT id, user_id, login_time, deleted
		FROM sessions
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var list []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.LoginTime, &s.Deleted); err != nil {
			return nil, fmt.Errorf("sessionRepo.ListByUser: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// lockUser serializa rotaciones y logouts concurrentes del mismo usuario.
// Un usuario inexistente no bloquea nada.
func lockUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock user %d: %w", userID, err)
	}
	return nil
}

func invalidateSessions(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	tag, err := tx.Exec(ctx, `UPDATE sessions SET deleted = TRUE WHERE user_id = $1 AND deleted = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("invalidate sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func insertSession(ctx context.Context, tx pgx.Tx, userID int64, loginTime time.Time) (domain.Session, error) {
	session := domain.Session{UserID: userID, LoginTime: loginTime}
	err := tx.QueryRow(ctx, `
		INSERT INTO sessions (user_id, login_time, deleted)
		VALUES ($1, $2, FALSE)
		RETURNING id
	`, userID, loginTime).Scan(&session.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}
