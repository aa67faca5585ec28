package utils

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
)

func ColorText(text, color string) string {
	return color + text + Reset
}

func ColorStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return ColorText(fmt.Sprintf("%d", statusCode), Green)
	case statusCode >= 400 && statusCode < 500:
		return ColorText(fmt.Sprintf("%d", statusCode), Yellow)
	default:
		return ColorText(fmt.Sprintf("%d", statusCode), Red)
	}
}

// PrintLogInfo is the handlers' one-line request outcome log.
func PrintLogInfo(username *string, statusCode int, functionName string, err *error) {
	user := "Unknown"
	if username != nil {
		user = *username
	}

	event := log.Info()
	if statusCode >= 500 {
		event = log.Error()
	} else if statusCode >= 400 {
		event = log.Warn()
	}

	event = event.Str("user", user).Int("status", statusCode).Str("function", functionName)
	if err != nil && *err != nil {
		event = event.Err(*err)
	}
	event.Send()

	fmt.Printf("User: %s | Status: %s | Function: %s\n", user, ColorStatus(statusCode), functionName)
}
