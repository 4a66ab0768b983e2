package db

import (
	"fmt"
	"os"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/theonesud/API-Template/internal/config"
)

const (
	embeddedPort     = 5433
	embeddedUser     = "api"
	embeddedPassword = "api_local"
	embeddedDatabase = "api"
)

// StartEmbedded levanta un Postgres embebido para ENV=local y apunta cfg.DatabaseURL a el.
// El llamador debe invocar Stop al terminar.
func StartEmbedded(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(embeddedPort).
			Username(embeddedUser).
			Password(embeddedPassword).
			Database(embeddedDatabase).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "api-template-pg-runtime")),
	)
	if err := pg.Start(); err != nil {
		return nil, fmt.Errorf("start embedded postgres: %w", err)
	}

	cfg.DatabaseURL = EmbeddedDSN()
	return pg, nil
}

// EmbeddedDSN devuelve la cadena de conexion del Postgres embebido.
func EmbeddedDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		embeddedUser, embeddedPassword, embeddedPort, embeddedDatabase,
	)
}
