// Package auth provides the authentication core for session-backed services:
// signed access-token issuance and verification, server-side refresh-token
// (session) lifecycle, a per-request authentication gate, and the static
// role to permission mapping both of them consult.
//
// Access tokens:
//   - TokenService signs HS256 JWTs whose claims embed a point-in-time
//     snapshot of the user (id, name, role, created/updated timestamps) plus
//     the authorities derived from the role table. Tokens are stateless; they
//     are never tracked server-side and expire only by their own clock.
//
// Sessions:
//   - SessionManager persists one refresh-token row per outstanding session.
//     Rows are created at login/signup, flip revoked exactly once (single or
//     bulk logout), and may be swept once expired. Revoking a session does
//     not invalidate access tokens already issued from it; they ride out
//     their short TTL.
//
// The gate:
//   - middleware/authgate converts a raw bearer header into an anonymous or
//     authenticated request context. Invalid and expired tokens degrade
//     silently to anonymous; producing a 401 is the authorization layer's
//     job, not the gate's.
package auth
