package client

import (
	"regexp"
	"strings"

	"github.com/gookit/color"
)

type lineKind int

const (
	kindPlain lineKind = iota
	kindChat
	kindWhisper
	kindEvent
	kindError
)

var stampPattern = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

var errorMarkers = []string{
	"is not found.",
	"is already taken",
	"is invalid",
	"Unknown command:",
	"Usage: ",
	"cannot be empty",
}

// classify guesses the kind of a server line from its wording.
func classify(line string) lineKind {
	body := stampPattern.ReplaceAllString(line, "")
	stamped := body != line

	switch {
	case strings.Contains(body, " whispered: ") || strings.HasPrefix(body, "Whispered to "):
		return kindWhisper
	case strings.HasSuffix(body, " joined the chat!"),
		strings.HasSuffix(body, " left the chat."),
		strings.Contains(body, " is now known as "):
		return kindEvent
	}
	for _, marker := range errorMarkers {
		if strings.Contains(body, marker) {
			return kindError
		}
	}
	if stamped {
		return kindChat
	}
	return kindPlain
}

var styles = map[lineKind]color.Style{
	kindChat:    color.New(color.FgGreen),
	kindWhisper: color.New(color.FgMagenta),
	kindEvent:   color.New(color.FgYellow),
	kindError:   color.New(color.FgRed, color.OpBold),
}

func render(line string, colours bool) string {
	if !colours {
		return line
	}
	if style, ok := styles[classify(line)]; ok {
		return style.Render(line)
	}
	return line
}
