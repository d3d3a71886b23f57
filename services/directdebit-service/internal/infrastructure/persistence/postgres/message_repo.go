package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgpkg "github.com/bibbank/bib/pkg/postgres"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/port"
)

// Compile-time interface check.
var _ port.MessageStore = (*MessageRepo)(nil)

// ErrMessageNotFound is returned by Find for an unknown destination.
var ErrMessageNotFound = errors.New("sepa message not found")

// StoredMessage is a row of sepa_messages.
type StoredMessage struct {
	ID          string
	Destination string
	Document    []byte
	SHA256      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MessageRepo stores serialized messages in PostgreSQL, keyed by
// destination. Calls join a transaction carried by the context.
type MessageRepo struct {
	db pgpkg.Querier
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: pool}
}

// Store upserts the document under destination. Storing the same
// destination again replaces the document, like overwriting a file.
func (r *MessageRepo) Store(ctx context.Context, destination string, xml []byte) error {
	sum := sha256.Sum256(xml)

	_, err := pgpkg.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO sepa_messages (id, destination, document, sha256, size_bytes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (destination) DO UPDATE SET
			document = EXCLUDED.document,
			sha256 = EXCLUDED.sha256,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = now()
	`, uuid.New(), destination, xml, hex.EncodeToString(sum[:]), len(xml))
	if err != nil {
		return fmt.Errorf("upsert sepa message %s: %w", destination, err)
	}
	return nil
}

// Find loads the document stored under destination.
func (r *MessageRepo) Find(ctx context.Context, destination string) (StoredMessage, error) {
	var m StoredMessage
	err := pgpkg.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id::text, destination, document, sha256, created_at, updated_at
		FROM sepa_messages WHERE destination = $1
	`, destination).Scan(&m.ID, &m.Destination, &m.Document, &m.SHA256, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredMessage{}, fmt.Errorf("%w: %s", ErrMessageNotFound, destination)
		}
		return StoredMessage{}, fmt.Errorf("query sepa message: %w", err)
	}
	return m, nil
}
