package testutil

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgpkg "github.com/bibbank/bib/pkg/postgres"
)

const postgresImage = "postgres:16-alpine"

// PostgresContainer is a throwaway PostgreSQL database with the service
// schema applied.
type PostgresContainer struct {
	DSN  string
	Pool *pgxpool.Pool
}

// StartPostgres starts a PostgreSQL container, applies the golang-migrate
// migrations under dir in fsys and returns a connected pool. The container
// and pool are released when the test ends.
func StartPostgres(ctx context.Context, t *testing.T, fsys fs.FS, dir string) *PostgresContainer {
	t.Helper()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("bib_directdebit"),
		postgres.WithUsername("bib"),
		postgres.WithPassword("bib"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { terminate(t, "postgres", ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := pgpkg.RunMigrationsFS(dsn, fsys, dir); err != nil {
		t.Fatalf("failed to run migrations from %s: %v", dir, err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pgpkg.HealthCheck(ctx, pool); err != nil {
		t.Fatalf("postgres not reachable: %v", err)
	}

	return &PostgresContainer{DSN: dsn, Pool: pool}
}

// Truncate empties tables so subtests sharing a container start clean.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	if _, err := pc.Pool.Exec(context.Background(), "TRUNCATE "+strings.Join(tables, ", ")); err != nil {
		t.Fatalf("failed to truncate %v: %v", tables, err)
	}
}

// terminate stops a container, logging instead of failing so cleanup of
// other resources still runs.
func terminate(t *testing.T, name string, ctr testcontainers.Container) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ctr.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate %s container: %v", name, err)
	}
}
