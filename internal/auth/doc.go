// Package auth implements authentication and authorization for GoIdentity-Admin.
//
// It is built from five cooperating pieces:
//
//   - Authority issues and validates signed access tokens and mints the
//     opaque refresh token values.
//   - Ledger is the durable refresh token state machine: issuance, rotation,
//     revocation and reuse (theft) detection under concurrent access.
//   - Service answers permission questions over the role/permission graph,
//     always resolved fresh so revocations take effect immediately.
//   - Orchestrator composes the above with the credential verifier and the
//     audit recorder into the login, register, refresh, revoke and
//     change-password operations.
//   - The Fiber middleware wires bearer token authentication and permission
//     checks into the web layer.
//
// Failure classification is deliberately coarse towards callers: every
// failed token check is ErrInvalidToken, and unknown principal and wrong
// password are both ErrInvalidCredentials. Internal detail goes to the audit
// trail and the log, never to the caller.
package auth
