package core

// Logger is any service that can log messages.
// args may carry an error, a map[string]interface{} of extra data, or the acting user.Person.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
