package backup

// Logger is the pipeline's logging seam. The CLI plugs a run-scoped
// structured logger in here; the service and syncer never write to the
// prompt streams themselves. Args alternate key/value pairs, slog-style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything. The zero value is ready to use.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Compile-time check that NopLogger implements Logger.
var _ Logger = NopLogger{}
