// Package worker drains the record sync queue into the configured mirror.
package worker

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/log"
	"bilancio/internal/mirror"
)

// SyncWorker applies queued ledger records to the remote mirror. Upserts are
// idempotent by record id, so redelivered messages are safe to reprocess.
type SyncWorker struct {
	mirror mirror.Mirror
	logger *log.Logger
}

func NewSyncWorker(m mirror.Mirror, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &SyncWorker{mirror: m, logger: logger}
}

// HandleRecordSync processes a single queued record. Unsupported operations
// on the mirror are acked rather than retried; a mirror that cannot serve
// them today will not serve them on redelivery either.
func (w *SyncWorker) HandleRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing record sync message",
		log.FieldRecordKind, msg.Kind,
		log.FieldOwnerID, msg.OwnerID)

	var err error
	switch msg.Kind {
	case amqp.KindTransaction:
		t, decodeErr := msg.Transaction()
		if decodeErr != nil {
			return fmt.Errorf("decode transaction record: %w", decodeErr)
		}
		err = w.mirror.UpsertTransaction(ctx, t)
	case amqp.KindGoal:
		g, decodeErr := msg.Goal()
		if decodeErr != nil {
			return fmt.Errorf("decode goal record: %w", decodeErr)
		}
		err = w.mirror.UpsertGoal(ctx, g)
	default:
		return fmt.Errorf("unknown record kind %q", msg.Kind)
	}

	if errors.Is(err, mirror.ErrUnsupported) {
		w.logger.WarnContext(ctx, "Mirror does not support upsert, dropping message",
			log.FieldRecordKind, msg.Kind,
			log.FieldOwnerID, msg.OwnerID)
		return nil
	}
	if mirror.IsPermanent(err) {
		// The mirror rejected the record itself; redelivering the same
		// payload would fail identically, so ack and move on.
		w.logger.ErrorContext(ctx, "Mirror rejected record, dropping message",
			log.FieldRecordKind, msg.Kind,
			log.FieldOwnerID, msg.OwnerID,
			log.FieldError, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("upsert %s record: %w", msg.Kind, err)
	}

	w.logger.InfoContext(ctx, "Record mirrored",
		log.FieldRecordKind, msg.Kind,
		log.FieldOwnerID, msg.OwnerID,
		log.FieldOperation, log.OpSync)
	return nil
}

// Run consumes from the queue until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeRecordSync(ctx, w.HandleRecordSync)
}
