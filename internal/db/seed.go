package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SeedSuperuser crea la compania de prueba y el superusuario si no existen.
// Devuelve el id del usuario.
func SeedSuperuser(ctx context.Context, conn txBeginner, email string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, fmt.Errorf("seed superuser: email is required")
	}

	var userID int64
	err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, email).Scan(&userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		now := time.Now().UTC()
		var companyID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO companies (name, about, calling_phone_numbers, whatsapp_phone_number, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, "Test Company", "This is a test company.", "+15551234567", "+15557654321", now).Scan(&companyID)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO users (email, company_id, deleted, created_at)
			VALUES ($1, $2, FALSE, $3)
			RETURNING id
		`, email, companyID, now).Scan(&userID)
	})
	if err != nil {
		return 0, fmt.Errorf("seed superuser: %w", err)
	}
	return userID, nil
}
