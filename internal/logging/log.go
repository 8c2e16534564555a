// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Debug logging goes to stderr
// so it never mixes with query output on stdout; when verbose is false the
// logger is silenced entirely.
func Setup(verbose bool) {
	if !verbose && os.Getenv("QUARRY_VERBOSE") != "1" {
		log.Logger = zerolog.New(io.Discard)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).With().Timestamp().Logger()
}

// ConnectHint maps common transport failures to a short actionable hint for
// the startup error message, or returns an empty string.
func ConnectHint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case contains(msg, "connection refused", "unavailable"):
		return "is the engine running and the address correct?"
	case contains(msg, "deadline", "timeout", "i/o timeout"):
		return "the engine did not answer in time; check the network path"
	case contains(msg, "certificate", "tls", "handshake"):
		return "TLS handshake failed; use --insecure for engines without TLS"
	case contains(msg, "password", "authentication"):
		return "authentication failed; check the stored credentials"
	}
	return ""
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
