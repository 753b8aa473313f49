package consumer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PersistenceHandler appends processed workout events to the event log table.
type PersistenceHandler struct {
	pool *pgxpool.Pool
}

// NewPersistenceHandler constructs a PersistenceHandler backed by the provided pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool}
}

// Handle records the event in workout_event_log. Inserts are idempotent on
// (topic, partition, record_offset) so redelivered messages do not duplicate rows.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	const query = `
		INSERT INTO workout_event_log (topic, partition, record_offset, event_type, user_id, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (topic, partition, record_offset) DO NOTHING`

	if _, err := h.pool.Exec(ctx, query, msg.Topic, msg.Partition, msg.Offset, msg.EventType, msg.UserID, []byte(msg.Payload)); err != nil {
		return fmt.Errorf("insert event log row: %w", err)
	}
	return nil
}
