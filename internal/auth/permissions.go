package auth

// Built-in feature codes used for role-based access control of the
// administration API itself. They are provisioned at first start below the
// built-in administration module and behave like any other feature.
const (
	// FeatureModules guards administration of the module tree and features.
	FeatureModules = "MODULES"

	// FeatureRoles guards administration of roles and permission grants.
	FeatureRoles = "ROLES"

	// FeatureUsers guards administration of user accounts and role assignments.
	FeatureUsers = "USERS"

	// FeatureAuditLogs guards read access to the audit trail.
	FeatureAuditLogs = "AUDIT_LOGS"
)
