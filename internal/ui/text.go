package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Formatter colours one kind of status text. Without colour it falls back to
// the Formatter's plain decoration, so the kind stays recognisable in logs
// and under NO_COLOR.
type Formatter struct {
	color *color.Color
	open  string
	close string
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.open + text + f.close
	}
	return f.color.Sprint(text)
}

// Sprint formats like fmt.Sprint.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// NO_COLOR (https://no-color.org/) wins over fatih/color's terminal
// detection.
func noColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

var (
	// Code is a command to run. `backticks` without colour.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	Path = Formatter{color.New(color.FgYellow), "", ""}
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight is a record label such as a hostname or project.
	// 'single quotes' without colour.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted is secondary detail. (parentheses) without colour.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Token is a record token. It is never decorated so it can be copied
	// straight out of the terminal.
	Token = Formatter{color.New(color.FgCyan, color.Bold), "", ""}

	// Identity is a base58 public identity, undecorated for the same reason.
	Identity = Formatter{color.New(color.FgMagenta), "", ""}
)

// ShortIdentity abbreviates an identity for status lines, keeping enough of
// both ends to tell identities apart by eye.
func ShortIdentity(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "…" + id[len(id)-6:]
}

// Label renders a record label, or a muted "unknown" when it is empty.
func Label(value string) string {
	if value == "" {
		return Muted.Sprint("unknown")
	}
	return Highlight.Sprint(value)
}

// Relative describes t against now in words: "15 minutes from now",
// "3 hours ago".
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
