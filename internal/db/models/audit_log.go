package models

import "time"

// AuditAction identifies the kind of security-relevant event being recorded.
type AuditAction string

const (
	// AuditUserCreated records the registration or creation of a user.
	AuditUserCreated AuditAction = "user.created"
	// AuditUserUpdated records an update to a user account.
	AuditUserUpdated AuditAction = "user.updated"
	// AuditUserDeleted records the deletion of a user account.
	AuditUserDeleted AuditAction = "user.deleted"
	// AuditLoginSuccess records a successful login.
	AuditLoginSuccess AuditAction = "login.success"
	// AuditLoginFailed records a failed login attempt.
	AuditLoginFailed AuditAction = "login.failed"
	// AuditPasswordChanged records a password change.
	AuditPasswordChanged AuditAction = "password.changed"
	// AuditRoleAssigned records a role assignment to a user.
	AuditRoleAssigned AuditAction = "role.assigned"
	// AuditRoleRevoked records a role removal from a user.
	AuditRoleRevoked AuditAction = "role.revoked"
	// AuditPermissionGranted records a permission grant to a role.
	AuditPermissionGranted AuditAction = "permission.granted"
	// AuditPermissionRevoked records a permission removal from a role.
	AuditPermissionRevoked AuditAction = "permission.revoked"
	// AuditModuleCreated records the creation of a module.
	AuditModuleCreated AuditAction = "module.created"
	// AuditModuleUpdated records an update to a module.
	AuditModuleUpdated AuditAction = "module.updated"
	// AuditModuleDeleted records the deletion of a module.
	AuditModuleDeleted AuditAction = "module.deleted"
	// AuditTokenRevoked records a refresh token revocation.
	AuditTokenRevoked AuditAction = "token.revoked"
	// AuditTokenReuse records the presentation of an already-spent refresh token.
	AuditTokenReuse AuditAction = "token.reuse"
)

// AuditLog represents one immutable security-relevant fact.
// Rows are append-only; no update or delete path exists anywhere in the code.
type AuditLog struct {
	// ID is the unique identifier for the audit entry.
	ID uint64 `gorm:"primaryKey"`
	// Action is the kind of event being recorded.
	Action AuditAction `gorm:"type:varchar(50);not null;index"`
	// UserID is the acting user, if one was authenticated.
	UserID *uint64 `gorm:"index"`
	// EntityID is the affected entity, if the event targets one.
	EntityID *uint64
	// EntityType names the kind of the affected entity ("User", "Role", ...).
	EntityType string `gorm:"size:50"`
	// Details carries free-text detail about the event.
	Details string `gorm:"size:1000"`
	// IPAddress is the origin address of the request that caused the event.
	IPAddress string `gorm:"size:45"`
	// UserAgent is the origin user agent of the request that caused the event.
	UserAgent string `gorm:"size:500"`
	// ProjectID is the tenant scope the event belongs to.
	ProjectID string `gorm:"size:100;index"`
	// CreatedAt is the timestamp of the event (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for the AuditLog model.
// This overrides GORM's default pluralized table naming.
func (AuditLog) TableName() string {
	return "audit_logs"
}
