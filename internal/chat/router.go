package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const emptyListing = "No users currently connected"

// Router formats messages and delivers them to registered sessions.
//
// Delivery to each recipient is independent: a recipient that cannot accept a
// line is logged and skipped. Nothing the router does is reported back to the
// sender as an error.
type Router struct {
	registry *Registry
	log      *slog.Logger
	now      func() time.Time
}

func NewRouter(registry *Registry, log *slog.Logger, now func() time.Time) *Router {
	if now == nil {
		now = time.Now
	}
	return &Router{registry: registry, log: log, now: now}
}

// Broadcast delivers a chat line from sender to every other registered session
// and returns how many recipients accepted it. The sender is excluded by
// identity, so a rename in flight cannot make it receive its own echo.
func (r *Router) Broadcast(sender *Session, body string) int {
	msg := Message{Kind: KindBroadcast, From: sender.Name(), Body: body, At: r.now()}
	delivered := r.fanout(sender, msg.Line())
	r.log.Debug("Broadcast", "from", msg.From, "recipients", delivered, "body", body)
	return delivered
}

// Announce delivers a server notice to every registered session. Join, leave
// and rename events go through here.
func (r *Router) Announce(body string) int {
	msg := Message{Kind: KindSystemNotice, Body: body, At: r.now()}
	delivered := r.fanout(nil, msg.Line())
	r.log.Info(body, "recipients", delivered)
	return delivered
}

func (r *Router) fanout(exclude *Session, line string) int {
	delivered := 0
	for _, recipient := range r.registry.Sessions() {
		if recipient == exclude {
			continue
		}
		if err := recipient.Deliver(line); err != nil {
			r.log.Warn("Delivery failed", "recipient", recipient.Name(), "session", recipient.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Whisper delivers body from sender to the session registered as to, and a
// confirmation back to sender. It returns false, delivering nothing, when to is
// not registered. If sender is no longer registered the confirmation is skipped.
func (r *Router) Whisper(sender *Session, to, body string) bool {
	recipient, ok := r.registry.Lookup(to)
	if !ok {
		return false
	}

	at := r.now()
	from := sender.Name()
	whisper := Message{Kind: KindWhisper, From: from, To: to, Body: body, At: at}
	if err := recipient.Deliver(whisper.Line()); err != nil {
		r.log.Warn("Whisper delivery failed", "from", from, "to", to, "error", err)
	}

	if self, ok := r.registry.Lookup(from); ok && self == sender {
		echo := Message{Kind: KindSystemNotice, Body: fmt.Sprintf("Whispered to %s: %s", to, body), At: at}
		if err := sender.Deliver(echo.Line()); err != nil {
			r.log.Warn("Whisper confirmation failed", "from", from, "error", err)
		}
	}

	r.log.Debug("Whisper", "from", from, "to", to)
	return true
}

// UserListing renders the current snapshot of names, one per line.
func (r *Router) UserListing() string {
	names := r.registry.Snapshot()
	if len(names) == 0 {
		return emptyListing
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Connected Users (%d):", len(names))
	for _, name := range names {
		b.WriteString("\n  ~ ")
		b.WriteString(name)
	}
	return b.String()
}
