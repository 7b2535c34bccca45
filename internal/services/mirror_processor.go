package services

import (
	"context"
	"encoding/json"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/sheets"
)

// MirrorProcessor applies entry events to the spreadsheet mirror. It is
// driven by the worker's AMQP consumer; returning an error requeues the
// event.
type MirrorProcessor struct {
	writer sheets.MirrorWriter
	logger *log.Logger
}

func NewMirrorProcessor(writer sheets.MirrorWriter, logger *log.Logger) *MirrorProcessor {
	return &MirrorProcessor{
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle mirrors a single event. Created and updated events append a row;
// deleted events land in the deletion log.
func (p *MirrorProcessor) Handle(ctx context.Context, ev *amqp.EntryEvent) error {
	if ev.Action == amqp.ActionDeleted {
		if err := p.writer.RecordDeletion(ctx, ev.Kind, ev.ID); err != nil {
			return fmt.Errorf("record deletion: %w", err)
		}
		p.logger.InfoContext(ctx, "mirrored deletion",
			log.FieldEntryKind, ev.Kind,
			log.FieldEntryID, ev.ID)
		return nil
	}

	switch ev.Kind {
	case amqp.KindIncome:
		var entry core.IncomeEntry
		if err := json.Unmarshal(ev.Payload, &entry); err != nil {
			return fmt.Errorf("decode income payload: %w", err)
		}
		ref, err := p.writer.AppendIncome(ctx, entry)
		if err != nil {
			return fmt.Errorf("append income: %w", err)
		}
		p.logger.InfoContext(ctx, "mirrored income",
			log.FieldEntryID, ev.ID,
			"row_ref", ref)
	case amqp.KindExpense:
		var entry core.ExpenseEntry
		if err := json.Unmarshal(ev.Payload, &entry); err != nil {
			return fmt.Errorf("decode expense payload: %w", err)
		}
		ref, err := p.writer.AppendExpense(ctx, entry)
		if err != nil {
			return fmt.Errorf("append expense: %w", err)
		}
		p.logger.InfoContext(ctx, "mirrored expense",
			log.FieldEntryID, ev.ID,
			"row_ref", ref)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}
