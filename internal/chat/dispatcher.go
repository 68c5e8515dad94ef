package chat

import (
	"fmt"
	"log/slog"
)

var helpLines = []string{
	"Available Commands:",
	"  /list - Show connected users",
	"  /whisper <user> <msg> - Send private message",
	"  /nick <name> - Change your username",
	"  /quit - Leave the chat",
	"  /help - Show this help message",
}

// Dispatcher turns input lines from an active session into registry and router
// operations. It holds no per-session state.
type Dispatcher struct {
	registry *Registry
	router   *Router
	log      *slog.Logger
}

func NewDispatcher(registry *Registry, router *Router, log *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, router: router, log: log}
}

// Dispatch handles one line from session. Errors are answered to the session
// with a notice and returned for classification; they never affect other
// sessions. Empty lines are ignored.
func (d *Dispatcher) Dispatch(session *Session, line string) error {
	switch cmd := ParseCommand(line).(type) {
	case nil:
		return nil
	case PlainChat:
		d.router.Broadcast(session, cmd.Body)
		return nil
	case Quit:
		session.reply(notice(fmt.Sprintf("Goodbye, %s :(", session.Name())))
		session.RequestQuit()
		return nil
	case ListUsers:
		session.replyLines(d.router.UserListing())
		return nil
	case Help:
		for _, line := range helpLines {
			session.reply(notice(line))
		}
		return nil
	case Whisper:
		if !d.router.Whisper(session, cmd.Target, cmd.Body) {
			session.reply(errorNotice("User '%s' is not found.", cmd.Target))
			return fmt.Errorf("whisper to %q: %w", cmd.Target, ErrRecipientNotFound)
		}
		return nil
	case Rename:
		return d.rename(session, cmd.NewName)
	case MalformedCommand:
		session.reply(errorNotice("%s", cmd.Usage))
		return fmt.Errorf("%s: %w", cmd.Name, ErrMalformedCommand)
	case UnknownCommand:
		session.reply(errorNotice("Unknown command: %s. Type /help for available commands.", cmd.Name))
		return fmt.Errorf("%s: %w", cmd.Name, ErrUnknownCommand)
	default:
		return fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
	}
}

func (d *Dispatcher) rename(session *Session, newName string) error {
	if err := ValidateName(newName); err != nil {
		session.reply(errorNotice("%s", invalidNameHint(newName)))
		return err
	}

	oldName := session.Name()
	if !d.registry.Rename(oldName, newName) {
		session.reply(errorNotice("Username '%s' is already taken.", newName))
		return fmt.Errorf("rename %q to %q: %w", oldName, newName, ErrNameTaken)
	}

	session.reply(notice("Your username has been changed to: " + newName))
	d.router.Announce(fmt.Sprintf("%s is now known as %s", oldName, newName))
	return nil
}
