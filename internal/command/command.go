// Package command classifies raw console input into intents.
//
// Parsing is pure: nothing here holds or mutates state.
package command

import (
	"fmt"
	"strings"

	"github.com/fentz26/hyperplex/internal/models"
)

// Kind identifies what a line of input asks for.
type Kind int

const (
	KindNone Kind = iota // empty input
	KindRun
	KindAgents
	KindStackAdd
	KindStackList
	KindStackPop
	KindStackClear
	KindHistory
	KindTools
	KindHelp
	KindClear
	KindUsage // recognized command, malformed arguments
	KindUnknown
)

var kindNames = map[Kind]string{
	KindNone:       "none",
	KindRun:        "run",
	KindAgents:     "agents",
	KindStackAdd:   "stack.add",
	KindStackList:  "stack.list",
	KindStackPop:   "stack.pop",
	KindStackClear: "stack.clear",
	KindHistory:    "history",
	KindTools:      "tools",
	KindHelp:       "help",
	KindClear:      "clear",
	KindUsage:      "usage",
	KindUnknown:    "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// DefaultDeliverable is used when a run omits --deliverable.
const DefaultDeliverable = "brief"

// Intent is the classified form of one input line.
type Intent struct {
	Kind Kind
	// Raw is the input as typed.
	Raw string
	// Command is the lower-cased first token.
	Command string

	// Task is the run task with flags stripped, or the stack entry text verbatim.
	Task           string
	Priority       models.Priority
	Deliverable    string
	DeliverableSet bool

	// Warnings collects lenient-parsing fallbacks.
	Warnings []string
	// Usage is set for KindUsage.
	Usage string
}

// Parse classifies input. It never fails: unrecognized input becomes
// KindUnknown and empty input KindNone.
func Parse(input string) Intent {
	in := Intent{Raw: input}
	head, rest := splitFirst(strings.TrimSpace(input))
	if head == "" {
		in.Kind = KindNone
		return in
	}
	in.Command = strings.ToLower(head)

	switch in.Command {
	case "run":
		return parseRun(in, rest)
	case "agents":
		in.Kind = KindAgents
	case "stack":
		return parseStack(in, rest)
	case "history":
		in.Kind = KindHistory
	case "tools":
		in.Kind = KindTools
	case "help":
		in.Kind = KindHelp
	case "clear":
		in.Kind = KindClear
	default:
		in.Kind = KindUnknown
	}
	return in
}

func parseRun(in Intent, rest string) Intent {
	in.Kind = KindRun
	in.Priority = models.PriorityNormal
	in.Deliverable = DefaultDeliverable

	var words []string
	for _, tok := range strings.Fields(rest) {
		if !isFlag(tok) {
			words = append(words, tok)
			continue
		}
		key, value, _ := strings.Cut(strings.TrimPrefix(tok, "--"), "=")
		switch strings.ToLower(key) {
		case "priority":
			p, ok := models.ParsePriority(value)
			if !ok {
				in.Warnings = append(in.Warnings, fmt.Sprintf("unknown priority %q, using %s", value, models.PriorityNormal))
			}
			in.Priority = p
		case "deliverable":
			value = strings.TrimSpace(value)
			if value == "" {
				in.Warnings = append(in.Warnings, fmt.Sprintf("empty deliverable, using %s", DefaultDeliverable))
				in.Deliverable = DefaultDeliverable
				in.DeliverableSet = false
				continue
			}
			in.Deliverable = value
			in.DeliverableSet = true
		default:
			in.Warnings = append(in.Warnings, fmt.Sprintf("ignored unknown flag --%s", key))
		}
	}

	in.Task = strings.Join(words, " ")
	if in.Task == "" {
		in.Kind = KindUsage
		in.Usage = Lookup("run").Usage
	}
	return in
}

func parseStack(in Intent, rest string) Intent {
	sub, text := splitFirst(rest)
	switch strings.ToLower(sub) {
	case "", "list":
		in.Kind = KindStackList
	case "add":
		if text == "" {
			in.Kind = KindUsage
			in.Usage = "stack add <task text>"
			return in
		}
		in.Kind = KindStackAdd
		in.Task = text
	case "pop":
		in.Kind = KindStackPop
	case "clear":
		in.Kind = KindStackClear
	default:
		in.Kind = KindUsage
		in.Usage = Lookup("stack").Usage
	}
	return in
}

func isFlag(tok string) bool {
	return len(tok) > 2 && strings.HasPrefix(tok, "--")
}

// splitFirst returns the first whitespace-delimited token of s and the
// remainder with surrounding whitespace trimmed and inner spacing kept.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
