// Package printer implements engine.OutputCallbacks in the terse, dig-like text format the
// trustydns-dig command used for its non-short output: the raw dns.Msg followed by a block of
// ";; " comment lines carrying metadata the message itself doesn't capture.
package printer

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/digq/engine"
	"github.com/markdingo/digq/internal/xlog"
)

// Printer writes human-readable query/response traces to Out, in the style dig/trustydns-dig use.
// Short suppresses everything but the ANSWER section of a successful response. Logger, if set,
// additionally emits structured slog records from OnTrying, OnMessage and OnReceived - digq's "-d"
// flag wires this up.
type Printer struct {
	Out    io.Writer
	Short  bool
	Logger *slog.Logger
}

func New(out io.Writer, short bool, logger *slog.Logger) *Printer {
	return &Printer{Out: out, Short: short, Logger: logger}
}

func (p *Printer) OnTrying(name string, l *engine.Lookup) {
	if p.Logger != nil {
		p.Logger.Debug("trying", slog.String("name", name), slog.Int("queries", len(l.Queries)))
	}
	if p.Short {
		return
	}
	fmt.Fprintf(p.Out, ";; Trying %s\n", name)
}

func (p *Printer) OnMessage(q *engine.Query, msg *dns.Msg, rtt time.Duration) {
	if p.Logger != nil {
		p.Logger.Debug("received", slog.String("server", q.ServerName), xlog.Msg(msg), slog.Duration("rtt", rtt))
	}
	if p.Short {
		return
	}
	fmt.Fprintf(p.Out, ";; Received %d bytes from %s in %s\n", msg.Len(), q.ServerName, rtt.Truncate(time.Millisecond))
}

func (p *Printer) OnReceived(l *engine.Lookup, msg *dns.Msg, err error) {
	if p.Logger != nil {
		if err != nil {
			p.Logger.Debug("lookup failed", slog.String("name", l.Textname), slog.Any("error", err))
		} else {
			p.Logger.Debug("lookup resolved", slog.String("name", l.Textname), xlog.Msg(msg))
		}
	}
	if err != nil {
		fmt.Fprintf(p.Out, ";; Error: %s: %s\n", l.Textname, err)
		return
	}
	if msg == nil {
		return
	}
	if p.Short {
		for _, rr := range msg.Answer {
			fmt.Fprintln(p.Out, rr.String())
		}
		return
	}
	fmt.Fprintln(p.Out, msg.String())
	fmt.Fprintf(p.Out, ";; Messages received for %s: %d\n", l.Textname, l.MsgCounter)
	fmt.Fprintln(p.Out)
}

func (p *Printer) OnShutdown(result engine.Result) {
	if p.Short {
		return
	}
	if result.Err != nil {
		fmt.Fprintf(p.Out, ";; Exit %d: %s\n", result.ExitCode, result.Err)
		return
	}
	fmt.Fprintf(p.Out, ";; Exit %d\n", result.ExitCode)
}
