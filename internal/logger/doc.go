// Package logger wraps zap for the updater's console output:
//   - a global sugared logger writing human-readable lines to stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes,
//   - leveled convenience functions (Infof, WarnKV, ...).
//
// Every status line the updater prints goes through this package, so
// --log-level controls the whole transcript.
package logger
