package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/bib/pkg/events"
	pgpkg "github.com/bibbank/bib/pkg/postgres"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

var (
	_ events.OutboxRepository = (*OutboxRepo)(nil)
	_ port.EventPublisher     = (*OutboxPublisher)(nil)
)

// OutboxRepo implements events.OutboxRepository on the outbox table.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Store inserts all entries in one transaction, or in the transaction
// carried by ctx. Re-inserting an entry with a known id is a no-op.
func (r *OutboxRepo) Store(ctx context.Context, entries []events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return pgpkg.InTransaction(ctx, r.pool, func(ctx context.Context) error {
		db := pgpkg.Conn(ctx, r.pool)
		for _, e := range entries {
			_, err := db.Exec(ctx, `
				INSERT INTO outbox (id, topic, aggregate_id, aggregate_type, event_type, payload, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO NOTHING
			`, e.ID, e.Topic, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert outbox event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// FetchUnpublished returns up to batchSize unpublished entries, oldest first.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, topic, aggregate_id, aggregate_type, event_type, payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Topic, &e.AggregateID, &e.AggregateType, &e.EventType,
			&e.Payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries as relayed.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox SET published_at = now()
		WHERE id = ANY($1::uuid[]) AND published_at IS NULL
	`, ids)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// OutboxPublisher implements port.EventPublisher by writing events to the
// outbox instead of the broker. A relay forwards them later.
type OutboxPublisher struct {
	outbox events.OutboxRepository
}

func NewOutboxPublisher(outbox events.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

func (p *OutboxPublisher) Publish(ctx context.Context, topic string, domainEvents ...events.DomainEvent) error {
	entries := make([]events.OutboxEntry, 0, len(domainEvents))
	for _, evt := range domainEvents {
		entry, err := events.NewOutboxEntry(topic, evt)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	if err := p.outbox.Store(ctx, entries); err != nil {
		return fmt.Errorf("store outbox entries: %w", err)
	}
	return nil
}
