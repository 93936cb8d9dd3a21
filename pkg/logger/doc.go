// Package logger builds configured slog.Logger instances and provides typed
// attribute helpers (logger.Error, logger.UserID, logger.Component) so log
// record keys stay consistent across the codebase.
package logger
