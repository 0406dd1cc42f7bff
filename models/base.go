package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webnovauz/paint-management-backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("paint-management-backend/models")

var (
	minPrice = decimal.RequireFromString("0.01")
	hundred  = decimal.NewFromInt(100)
)

const (
	defaultManualActor = "Manual adjustment"
	defaultAdjustNotes = "Manual stock adjustment"
)

// WriteOutboxEvent stores an event in the same transaction as the change it describes.
// The dispatcher publishes it after commit.
func WriteOutboxEvent(ctx context.Context, tx *gorm.DB, eventType string, refType string, refId int, payload any) error {
	raw, err := utils.ToRawJSON(payload)
	if err != nil {
		return err
	}
	record := OutboxRecord{
		EventType:     eventType,
		ReferenceType: refType,
		ReferenceId:   refId,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok && cid != "" {
			return cid
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			return sc.TraceID().String()
		}
	}
	return uuid.NewString()
}

// endSpan records err on the span before closing it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// hasScale reports whether d fits in places fractional digits.
func hasScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// actorFromContext is the free-text creator stored on movements and payments.
func actorFromContext(ctx context.Context, def string) string {
	if ctx == nil {
		return def
	}
	return utils.GetActorFromContext(ctx, def)
}

// statementContext returns the request context carried by a hook's tx, if any.
func statementContext(tx *gorm.DB) context.Context {
	if tx != nil && tx.Statement != nil && tx.Statement.Context != nil {
		return tx.Statement.Context
	}
	return context.Background()
}
