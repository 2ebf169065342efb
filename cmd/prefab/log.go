package main

import (
	"log/slog"
	"os"
)

// logLevel is lowered to debug by -v.
var logLevel = new(slog.LevelVar)

// theLog writes to stderr so that -json-patch output on stdout stays clean.
// Times are dropped and the INFO level is implicit.
var theLog = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: logLevel,
	ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			return slog.Attr{}
		case slog.LevelKey:
			if a.Value.String() == slog.LevelInfo.String() {
				return slog.Attr{}
			}
		}
		return a
	},
}))
