package main

import (
	"log"
	"time"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// sdkLogger routes SDK log records through logf.
func sdkLogger(cfg *Config) whiteboard.Logger {
	return whiteboard.LogFunc(func(format string, args ...any) {
		logf(cfg, format, args...)
	})
}
