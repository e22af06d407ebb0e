package repl

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/varz/cli/cmd"
	"github.com/ardnew/varz/variables"
)

// reply is the outcome of a control command.
type reply struct {
	text   string
	err    error
	quit   bool
	clear  bool
	reload bool
}

// control runs one control-mode command line. Commands that change the
// variables act on the model's store directly; the rest are reported in the
// reply for the caller to carry out.
func (m model) control(input string) reply {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	args = strings.TrimSpace(args)

	switch name {
	case "q", "quit", "exit":
		return reply{quit: true}

	case "h", "help":
		return reply{text: helpMessage()}

	case "l", "list":
		return reply{text: m.listVariables(args)}

	case "s", "set":
		return m.set(args)

	case "u", "unset":
		return m.unset(args)

	case "r", "reload":
		return reply{reload: true}

	case "c", "clear":
		return reply{clear: true}
	}

	return reply{err: fmt.Errorf("%w: %s (try 'help')", ErrUnknownCommand, name)}
}

func (m model) set(args string) reply {
	name, value := splitSet(args)
	if name == "" {
		return reply{err: fmt.Errorf("%w: set NAME VALUE", ErrMissingArgument)}
	}

	name = cmd.Decorate(name)

	if err := cmd.Assign(m.store, name+"="+value); err != nil {
		return reply{err: err}
	}

	stored, err := m.store.Get(name)
	if err != nil {
		return reply{err: err}
	}

	return reply{text: name + " = " + variables.Format(stored)}
}

func (m model) unset(args string) reply {
	if args == "" {
		return reply{err: fmt.Errorf("%w: unset NAME", ErrMissingArgument)}
	}

	name := cmd.Decorate(args)

	if _, err := m.store.Get(name); err != nil {
		return reply{err: err}
	}

	if err := m.store.Delete(name); err != nil {
		return reply{err: err}
	}

	return reply{text: hintStyle.Render("removed " + name)}
}

// splitSet splits the arguments of set into a variable name and the text of
// its value. The name ends at the first '=' or space, unless it is a
// decorated name, which ends at its closing brace. One '=' between the name
// and the value is dropped.
func splitSet(args string) (name, value string) {
	end := strings.IndexFunc(args, func(r rune) bool {
		return r == '=' || unicode.IsSpace(r)
	})

	if ref, ok := variables.Find(args, 0); ok && ref.Start == 0 {
		end = ref.End
	}

	if end < 0 {
		return args, ""
	}

	value = strings.TrimLeftFunc(args[end:], unicode.IsSpace)
	if rest, ok := strings.CutPrefix(value, "="); ok {
		value = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}

	return args[:end], value
}

// listVariables returns one line per stored variable, or per variable whose
// name fuzzy-matches pattern if it is not empty.
func (m model) listVariables(pattern string) string {
	names := m.store.Names()

	if pattern != "" {
		matches := fuzzy.Find(pattern, names)

		names = make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.Str
		}
	}

	if len(names) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for _, name := range names {
		value, err := m.store.Get(name)
		if err != nil {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(formatPreview(value)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}
