package core

// Logger is the application logger.
// args may hold errors, map[string]interface{} extras and at most one LogUser.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogUser identifies the console user an entry relates to.
type LogUser struct {
	ID       string
	Username string
	Email    string
}
