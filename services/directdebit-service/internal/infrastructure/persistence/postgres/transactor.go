package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	pgpkg "github.com/bibbank/bib/pkg/postgres"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

var _ port.Transactor = (*Transactor)(nil)

// Transactor runs a unit of work in one PostgreSQL transaction. MessageRepo
// and OutboxRepo calls made with the context passed to fn join it, so a
// stored message and its outbox events commit or roll back together.
type Transactor struct {
	db pgpkg.TxStarter
}

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{db: pool}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgpkg.InTransaction(ctx, t.db, fn)
}
