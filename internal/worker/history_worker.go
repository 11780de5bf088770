package worker

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/log"
	"gastos/internal/ports"
)

// ErrInvalidRecord marks messages that can never be stored; retrying them
// would loop forever.
var ErrInvalidRecord = errors.New("invalid import record")

// HistoryWorker writes import.completed messages into the import history.
type HistoryWorker struct {
	history ports.ImportRecorder
	logger  *log.Logger
}

func NewHistoryWorker(history ports.ImportRecorder, logger *log.Logger) *HistoryWorker {
	return &HistoryWorker{
		history: history,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleImportCompleted stores one message. Invalid records are logged and
// acknowledged; storage errors are returned so the message is requeued.
func (w *HistoryWorker) HandleImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error {
	rec := msg.Import
	if err := validate(rec.Rows, rec.Accepted, rec.Skipped); err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid import message",
			"import_id", rec.ID,
			log.FieldError, err.Error())
		return nil
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = msg.Timestamp
	}

	if err := w.history.RecordImport(ctx, rec); err != nil {
		return fmt.Errorf("record import %s: %w", rec.ID, err)
	}

	w.logger.InfoContext(ctx, "Import history updated",
		"import_id", rec.ID,
		log.FieldSessionID, rec.SessionID,
		log.FieldBank, rec.Bank,
		log.FieldAccepted, rec.Accepted,
		log.FieldSkipped, rec.Skipped)
	return nil
}

func validate(rows, accepted, skipped int) error {
	if rows < 0 || accepted < 0 || skipped < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidRecord)
	}
	if accepted+skipped > rows {
		return fmt.Errorf("%w: %d accepted + %d skipped exceeds %d rows", ErrInvalidRecord, accepted, skipped, rows)
	}
	return nil
}
