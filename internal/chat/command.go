package chat

import (
	"strings"
	"unicode"
)

// CommandPrefix marks a line as a command rather than plain chat.
const CommandPrefix = "/"

// Command is the parsed intent of one input line.
type Command interface {
	command()
}

type (
	Quit      struct{}
	ListUsers struct{}
	Help      struct{}

	Whisper struct {
		Target string
		Body   string
	}

	Rename struct {
		NewName string
	}

	PlainChat struct {
		Body string
	}

	UnknownCommand struct {
		Name string
	}

	// MalformedCommand is a recognized command with too few arguments.
	MalformedCommand struct {
		Name  string
		Usage string
	}
)

func (Quit) command()             {}
func (ListUsers) command()        {}
func (Help) command()             {}
func (Whisper) command()          {}
func (Rename) command()           {}
func (PlainChat) command()        {}
func (UnknownCommand) command()   {}
func (MalformedCommand) command() {}

const (
	whisperUsage = "Usage: /whisper <username> <message>"
	nickUsage    = "Usage: /nick <new_username>"
)

// ParseCommand turns one input line into a Command. It returns nil for a line
// that is empty after trimming.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, CommandPrefix) {
		return PlainChat{Body: line}
	}

	word, arg, rest := splitCommand(line)
	switch name := strings.ToLower(word); name {
	case "/quit":
		return Quit{}
	case "/list":
		return ListUsers{}
	case "/help":
		return Help{}
	case "/whisper":
		if arg == "" || rest == "" {
			return MalformedCommand{Name: name, Usage: whisperUsage}
		}
		return Whisper{Target: arg, Body: rest}
	case "/nick":
		if arg == "" {
			return MalformedCommand{Name: name, Usage: nickUsage}
		}
		return Rename{NewName: arg}
	default:
		return UnknownCommand{Name: name}
	}
}

// splitCommand splits a trimmed line into the command word, the first argument
// and the rest of the line. Runs of whitespace separate the first two tokens;
// the rest keeps its inner spacing.
func splitCommand(line string) (word, arg, rest string) {
	word, remainder := cutField(line)
	arg, remainder = cutField(remainder)
	return word, arg, strings.TrimSpace(remainder)
}

func cutField(s string) (field, remainder string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}
