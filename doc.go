// Package auth provides the NexoTV account service: signup, login, token
// revalidation and validation of the user behind a token.
//
// Accounts:
//   - Users are persisted with Bun. Emails are normalised and unique, the
//     password is stored as a bcrypt hash and never leaves the package:
//     every operation returns a PublicUser.
//   - IsActive is tri-state. Only an explicit false blocks an account, a
//     missing value counts as active.
//
// Tokens:
//   - TokenService signs HS256 tokens embedding the user id under "id" and
//     "sub" with a unique jti, so two tokens issued in the same second differ.
//
// Notifications:
//   - Signup and login hand a Notification to the configured Notifier. A
//     delivery failure is logged and recorded on the ActivitySink but never
//     fails the operation and never rolls back a created account. The mailer
//     package provides SMTP, goroutine and queue backed notifiers.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     signup, login, validation and notification events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package auth
