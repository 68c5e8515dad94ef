package chat

import (
	"fmt"
	"time"
)

const timestampLayout = "15:04:05"

// Kind classifies a message for rendering.
type Kind int

const (
	KindBroadcast Kind = iota
	KindWhisper
	KindSystemNotice
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindBroadcast:
		return "broadcast"
	case KindWhisper:
		return "whisper"
	case KindSystemNotice:
		return "notice"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a transient value rendered to exactly one line and then discarded.
// From is empty for server-origin notices and To is only set for whispers.
type Message struct {
	Kind Kind
	From string
	To   string
	Body string
	At   time.Time
}

// Text renders the message without its timestamp.
func (m Message) Text() string {
	switch m.Kind {
	case KindBroadcast:
		return fmt.Sprintf("%s: %s", m.From, m.Body)
	case KindWhisper:
		return fmt.Sprintf("%s whispered: %s", m.From, m.Body)
	default:
		return m.Body
	}
}

// Line renders the message as a single wire line. Messages with a zero At are
// direct replies and carry no timestamp.
func (m Message) Line() string {
	if m.At.IsZero() {
		return m.Text()
	}
	return "[" + m.At.Format(timestampLayout) + "] " + m.Text()
}

func notice(body string) Message {
	return Message{Kind: KindSystemNotice, Body: body}
}

func errorNotice(format string, args ...any) Message {
	return Message{Kind: KindError, Body: fmt.Sprintf(format, args...)}
}
