// Package audit records security-relevant events as HMAC-signed records.
package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/models"
)

// Publisher forwards encoded records to an event bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Event is what a caller knows about something that happened. The logger
// fills in the ID, timestamp, request details and signature.
type Event struct {
	ActorID       string
	ActorUsername string
	Action        string
	ResourceID    string
	Result        string
	Reason        string
	Metadata      map[string]any
}

type Logger struct {
	secretKey     []byte
	log           *logging.Logger
	publisher     Publisher
	subjectPrefix string
	now           func() time.Time
}

type Option func(*Logger)

// WithPublisher forwards every record to p on "<prefix>.audit.<action>".
func WithPublisher(p Publisher, subjectPrefix string) Option {
	return func(l *Logger) {
		l.publisher = p
		l.subjectPrefix = subjectPrefix
	}
}

func NewLogger(secretKey string, log *logging.Logger, opts ...Option) *Logger {
	l := &Logger{
		secretKey: []byte(secretKey),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log signs and emits a record for e. Publishing happens asynchronously and
// never blocks or fails the caller.
func (l *Logger) Log(ctx context.Context, e Event) *models.AuditRecord {
	id, _ := uuid.NewV7()
	info := RequestInfoFrom(ctx)

	record := &models.AuditRecord{
		ID:            id.String(),
		Timestamp:     l.now().UTC(),
		ActorID:       e.ActorID,
		ActorUsername: e.ActorUsername,
		Action:        e.Action,
		ResourceID:    e.ResourceID,
		IPAddress:     info.IP,
		UserAgent:     info.UserAgent,
		Result:        e.Result,
		Reason:        e.Reason,
		Metadata:      e.Metadata,
	}
	record.Signature = l.sign(record)

	level := slog.LevelInfo
	if record.Result == models.ResultFailure {
		level = slog.LevelWarn
	}
	l.log.WithContext(ctx).LogAttrs(ctx, level, "audit",
		slog.String("audit_id", record.ID),
		slog.String("action", record.Action),
		slog.String("result", record.Result),
		logging.UserID(record.ActorID),
		logging.Username(record.ActorUsername),
		slog.String("resource_id", record.ResourceID),
		logging.IP(record.IPAddress),
		logging.Reason(record.Reason),
		slog.String("signature", record.Signature),
	)

	if l.publisher != nil {
		go l.publish(record)
	}

	return record
}

func (l *Logger) publish(record *models.AuditRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		l.log.Warn("Failed to encode audit record", logging.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.publisher.Publish(ctx, Subject(l.subjectPrefix, record.Action), data); err != nil {
		l.log.Warn("Failed to publish audit record",
			slog.String("audit_id", record.ID),
			logging.Error(err),
		)
	}
}

// Subject returns the bus subject for an action.
func Subject(prefix, action string) string {
	if prefix == "" {
		return "audit." + action
	}
	return prefix + ".audit." + action
}

func (l *Logger) sign(r *models.AuditRecord) string {
	data := []byte(r.ID + r.Timestamp.Format(time.RFC3339Nano) + r.ActorID + r.Action + r.ResourceID + r.Result)
	h := hmac.New(sha256.New, l.secretKey)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether r carries a valid signature for this logger's key.
func (l *Logger) Verify(r *models.AuditRecord) bool {
	expected := l.sign(r)
	return hmac.Equal([]byte(expected), []byte(r.Signature))
}
