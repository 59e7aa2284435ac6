package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	timeColor    = color.New(color.FgHiBlack)
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgCyan)
	methodColor  = color.New(color.FgMagenta)
)

func stamp() string {
	return timeColor.Sprintf("[%s]", time.Now().Format("15:04:05"))
}

// Info logs general information (blue)
func Info(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), infoColor.Sprintf(format, args...))
}

// Success logs a success (green)
func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), successColor.Sprintf("✓ "+format, args...))
}

// Warning logs a warning (yellow)
func Warning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), warnColor.Sprintf("⚠ "+format, args...))
}

// Error logs an error (red)
func Error(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), errorColor.Sprintf("✗ "+format, args...))
}

// Debug logs a debug message (cyan), development only
func Debug(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), debugColor.Sprintf(format, args...))
}

// Request logs an HTTP request with its status code and duration
func Request(method, path string, statusCode int, duration time.Duration) {
	var statusColor *color.Color
	switch {
	case statusCode >= 200 && statusCode < 300:
		statusColor = successColor
	case statusCode >= 300 && statusCode < 400:
		statusColor = debugColor
	case statusCode >= 400 && statusCode < 500:
		statusColor = warnColor
	default:
		statusColor = errorColor
	}

	var durationStr string
	switch {
	case duration < time.Millisecond:
		durationStr = fmt.Sprintf("%dµs", duration.Microseconds())
	case duration < time.Second:
		durationStr = fmt.Sprintf("%dms", duration.Milliseconds())
	default:
		durationStr = fmt.Sprintf("%.2fs", duration.Seconds())
	}

	fmt.Printf("%s %s %-50s %s %s\n",
		stamp(),
		methodColor.Sprintf("%-6s", method),
		path,
		statusColor.Sprintf("[%d]", statusCode),
		timeColor.Sprintf("(%s)", durationStr))
}
