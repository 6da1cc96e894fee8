package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventVerificationSent   EventType = "verification_sent"
	EventEmailVerified      EventType = "email_verified"
	EventLoginLinkRequested EventType = "login_link_requested"
	EventLoginLinkReplayed  EventType = "login_link_replayed"
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventBlockCreated       EventType = "block_created"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventCSRFViolation      EventType = "csrf_violation"
	EventUploadRejected     EventType = "upload_rejected"
	EventMalwareDetected    EventType = "malware_detected"
	EventCandidateDeleted   EventType = "candidate_deleted"
	EventDataExport         EventType = "data_export"
)

// SecurityEvent is one audit record. Callers mask SubjectValue.
type SecurityEvent struct {
	Event        EventType
	SubjectType  string // email, ip, candidate_id, system
	SubjectValue string
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

func (e SecurityEvent) fields() []zap.Field {
	fields := make([]zap.Field, 0, 8)
	optional := []struct{ key, val string }{
		{"subject_type", e.SubjectType},
		{"subject_value", e.SubjectValue},
		{"ip", e.IP},
		{"user_agent", e.UserAgent},
		{"request_id", e.RequestID},
	}
	for _, f := range optional {
		if f.val != "" {
			fields = append(fields, zap.String(f.key, f.val))
		}
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	return fields
}

// SecurityLogger writes security events as JSON lines tagged log_type=security,
// separate from the slog application log.
type SecurityLogger struct {
	zapLogger *zap.Logger
}

var defaultLogger *SecurityLogger

// InitSecurityLogger builds the process-wide security logger. Outside
// production, INFO events are kept too.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.Sampling = nil
	if environment != "production" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	sl := &SecurityLogger{
		zapLogger: logger.With(
			zap.String("log_type", "security"),
			zap.String("service", serviceName),
			zap.String("env", environment),
		),
	}
	defaultLogger = sl
	return sl
}

// NewLogger wraps an existing zap logger.
func NewLogger(z *zap.Logger) *SecurityLogger {
	return &SecurityLogger{zapLogger: z.With(zap.String("log_type", "security"))}
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *SecurityLogger {
	return &SecurityLogger{zapLogger: zap.NewNop()}
}

// DefaultLogger returns the process-wide logger, creating one if needed.
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return InitSecurityLogger("careers-backend", "development")
	}
	return defaultLogger
}

// Log writes event at the zap level of its severity.
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	severity := GetSeverity(event.Event)
	fields := append(event.fields(), zap.String("severity", string(severity)))
	sl.zapLogger.Log(severity.Level(), string(event.Event), fields...)
}

// LogEmailEvent logs an event whose subject is an email address.
func (sl *SecurityLogger) LogEmailEvent(ctx context.Context, event EventType, email, ip, userAgent, requestID string, details map[string]interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      details,
	})
}

// LogLoginFailed logs a failed login attempt
func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.LogEmailEvent(ctx, EventLoginFailed, email, ip, userAgent, requestID, map[string]interface{}{"reason": reason})
}

// LogLoginBlocked logs when a login is blocked due to too many attempts
func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.LogEmailEvent(ctx, EventLoginBlocked, email, ip, userAgent, requestID, map[string]interface{}{"reason": "too_many_failed_attempts"})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogBlockCreated logs when a block is created
func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, subjectType, subjectValue, ip, requestID string, durationMinutes int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  subjectType,
		SubjectValue: maskValue(subjectType, subjectValue),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"duration_minutes": durationMinutes},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	switch {
	case len(email) < 3:
		return "***"
	case at <= 1:
		return "***" + email[max(at, 1):]
	default:
		return email[:1] + "***" + email[at:]
	}
}

// HashValue creates a short SHA256 digest of a value for logging without PII
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value
	default:
		return HashValue(value)
	}
}
