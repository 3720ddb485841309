package observability

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const auditEventVersion = 1

// AuditInput describes one staff action on a resource.
type AuditInput struct {
	EventName    string
	ActorStaffID string
	TargetType   string
	TargetID     string
	Action       string
	Outcome      string
	Reason       string
}

type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	ActorStaffID string `json:"actor_staff_id"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TraceID      string `json:"trace_id,omitempty"`
	TS           string `json:"ts"`
}

func BuildAuditEvent(r *http.Request, in AuditInput) AuditEvent {
	ev := AuditEvent{
		EventVersion: auditEventVersion,
		EventName:    in.EventName,
		ActorStaffID: in.ActorStaffID,
		ActorIP:      clientIP(r),
		TargetType:   in.TargetType,
		TargetID:     in.TargetID,
		Action:       in.Action,
		Outcome:      in.Outcome,
		Reason:       in.Reason,
		RequestID:    r.Header.Get("X-Request-Id"),
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
	}
	return ev
}

func (e AuditEvent) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"event_name":     e.EventName,
		"actor_staff_id": e.ActorStaffID,
		"target_type":    e.TargetType,
		"action":         e.Action,
		"outcome":        e.Outcome,
		"ts":             e.TS,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if e.EventVersion != auditEventVersion {
		missing = append(missing, "event_version")
	}
	if len(missing) > 0 {
		return errors.New("audit event missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Audit logs a staff action. Invalid events are still logged, flagged as such.
func Audit(r *http.Request, in AuditInput) {
	ev := BuildAuditEvent(r, in)
	attrs := []any{
		"event_version", ev.EventVersion,
		"event_name", ev.EventName,
		"actor_staff_id", ev.ActorStaffID,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
	}
	if err := ev.Validate(); err != nil {
		attrs = append(attrs, "audit_invalid", err.Error())
	}
	slog.InfoContext(r.Context(), "audit", attrs...)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
