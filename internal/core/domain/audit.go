package domain

import "time"

// AuthEventType names what happened at the auth boundary.
type AuthEventType string

const (
	AuthEventLoginSucceeded AuthEventType = "login_succeeded"
	AuthEventLoginFailed    AuthEventType = "login_failed"
	AuthEventLogout         AuthEventType = "logout"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType `json:"type" bson:"type"`
	Email      string        `json:"email,omitempty" bson:"email,omitempty"`
	IdentityID string        `json:"identity_id,omitempty" bson:"identity_id,omitempty"`
	Reason     string        `json:"reason,omitempty" bson:"reason,omitempty"`
	RemoteIP   string        `json:"remote_ip,omitempty" bson:"remote_ip,omitempty"`
	RequestID  string        `json:"request_id,omitempty" bson:"request_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at" bson:"occurred_at"`
}
