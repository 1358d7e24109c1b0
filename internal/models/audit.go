package models

import "time"

// Audit actions
const (
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionRegister     = "register"
	ActionUserCreate   = "user_create"
	ActionUserUpdate   = "user_update"
	ActionUserDelete   = "user_delete"
	ActionAccessDenied = "access_denied"
)

// Audit results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// AuditRecord is a tamper-evident record of a security-relevant event.
// Signature is an HMAC over the identifying fields.
type AuditRecord struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	ActorID       string         `json:"actor_id,omitempty"`
	ActorUsername string         `json:"actor_username,omitempty"`
	Action        string         `json:"action"`
	ResourceID    string         `json:"resource_id,omitempty"`
	IPAddress     string         `json:"ip_address,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	Result        string         `json:"result"`
	Reason        string         `json:"reason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Signature     string         `json:"signature,omitempty"`
}
