package scene

// Logger is the minimal logging capability the scene registry needs. It is
// satisfied by webrays.DefaultLogger without scene importing package
// webrays; scene only needs this shape, not the caller's id or debug gate.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
