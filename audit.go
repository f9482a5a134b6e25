package authkit

import (
	"context"
	"time"

	internalaudit "github.com/basillal/LeadSphere-sub001/internal/audit"
)

const (
	auditEventLoginSuccess   = "login_success"
	auditEventLoginFailure   = "login_failure"
	auditEventLogout         = "logout"
	auditEventBootstrap      = "bootstrap"
	auditEventRenewalSuccess = "renewal_success"
	auditEventRenewalFailure = "renewal_failure"
	auditEventForcedLogout   = "forced_logout"
	auditEventTenantSwitch   = "tenant_switch"
)

// emitAudit forwards one event to the dispatcher. The metadata builder is only
// invoked when auditing is enabled, keeping the disabled path allocation-free.
func (m *Manager) emitAudit(ctx context.Context, eventType string, success bool, userID string, err error, metadata func() map[string]string) {
	if m == nil || m.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		TenantID:  m.TenantScope(),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	m.audit.Emit(ctx, event)
}
