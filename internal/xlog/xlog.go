// Package xlog wraps log/slog with the compact message formatting internal/dnsutil already uses
// for trace-level output, so a Lookup or dns.Msg can be logged directly as a structured attribute
// rather than forcing every call site to pre-format a string.
package xlog

import (
	"log/slog"
	"os"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/internal/dnsutil"
)

// New returns a slog.Logger writing to os.Stderr at the given level, in text form. digq's CLI driver
// uses this for its "-d" verbose diagnostics; the engine itself never logs directly -
// it reports via internal/reporter and returns errors - so this logger is only ever held by the
// driver layer.
func New(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Msg returns a "msg" string attribute holding a dns.Msg's compact one-line form, so
// `logger.Debug("received", xlog.Msg(m))` logs that rather than slog's default %+v dump of the struct.
func Msg(m *dns.Msg) slog.Attr {
	if m == nil {
		return slog.String("msg", "<nil>")
	}
	return slog.String("msg", dnsutil.CompactMsgString(m))
}
