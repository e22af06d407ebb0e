package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/varz/variables"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "set", "unset", "reload", "clear", "quit"}

// nameCommands are the control commands whose first argument is a variable
// name.
var nameCommands = []string{"set", "unset"}

// previewWidth is the number of characters of a value shown by list.
const previewWidth = 40

// wordBounds returns the whitespace-delimited word at the cursor position and
// its byte boundaries within input. The word is empty when the cursor sits
// between two spaces or at either end of a blank line.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if unicode.IsSpace(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if unicode.IsSpace(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

func isSigil(c byte) bool {
	return c == variables.Scalar.Sigil() ||
		c == variables.List.Sigil() ||
		c == variables.Dict.Sigil()
}

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}

	return n%2 == 1
}

// openReference locates the variable reference being typed at the cursor: a
// sigil, optionally followed by an opening brace and a partial name, with no
// closing brace between the name and the cursor.
//
// The returned word is the partial name. start is the offset of the sigil
// and end is the offset just past the name, including its closing brace if
// one follows, so a completed name replaces input[start:end].
func openReference(input string, cursor int) (
	word string,
	kind variables.Kind,
	start, end int,
	ok bool,
) {
	if cursor > len(input) {
		cursor = len(input)
	}

	var body int

	switch open := strings.LastIndexByte(input[:cursor], '{'); {
	case cursor > 0 && isSigil(input[cursor-1]) && !escaped(input, cursor-1):
		start, body = cursor-1, cursor
		if strings.HasPrefix(input[cursor:], "{") {
			body++
		}

	case open > 0 && open > strings.LastIndexByte(input[:cursor], '}') &&
		isSigil(input[open-1]) && !escaped(input, open-1):
		start, body = open-1, open+1

	default:
		return "", 0, 0, 0, false
	}

	end = max(cursor, body)

	for end < len(input) {
		c := input[end]
		if c == '}' {
			word = input[body:end]
			end++

			return word, variables.Kind(input[start]), start, end, true
		}

		if c == '{' || isSigil(c) || unicode.IsSpace(rune(c)) {
			break
		}

		end++
	}

	return input[body:end], variables.Kind(input[start]), start, end, true
}

// nameCandidates returns the stored variables that may be referenced with
// the given kind, each decorated with that kind's sigil. Any variable may be
// referenced as a scalar; list and dictionary references offer only
// sequences and mappings.
func nameCandidates(store *variables.Store, kind variables.Kind) []string {
	var names []string

	for name, value := range store.All() {
		switch kind {
		case variables.List:
			if _, ok := value.([]any); !ok {
				continue
			}

		case variables.Dict:
			if _, ok := value.(map[string]any); !ok {
				continue
			}
		}

		names = append(names, string(kind.Sigil())+name[1:])
	}

	return names
}

// allMatches returns every candidate as an unfiltered match.
func allMatches(candidates []string) fuzzy.Matches {
	matches := make(fuzzy.Matches, len(candidates))
	for i, c := range candidates {
		matches[i] = fuzzy.Match{Str: c, Index: i}
	}

	return matches
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list, and
// the byte range a selected candidate replaces.
//
// In eval mode the word is the partial name of the reference under the
// cursor; right after a sigil or opening brace every candidate matches. In
// control mode the first word completes command names and the argument of
// set and unset completes variable names.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	if m.mode == modeCtrl {
		word, start, end := wordBounds(input, cursor)
		if word == "" {
			return nil, nil, start, end
		}

		switch before := strings.Fields(input[:start]); {
		case len(before) == 0:
			candidates = ctrlCommands

		case len(before) == 1 && slices.Contains(nameCommands, before[0]):
			candidates = m.store.Names()

		default:
			return nil, nil, start, end
		}

		return fuzzy.Find(word, candidates), candidates, start, end
	}

	word, kind, start, end, ok := openReference(input, cursor)
	if !ok {
		return nil, nil, cursor, cursor
	}

	candidates = nameCandidates(m.store, kind)
	if len(candidates) == 0 {
		return nil, nil, start, end
	}

	if word == "" {
		return allMatches(candidates), candidates, start, end
	}

	return fuzzy.Find(word, candidates), candidates, start, end
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}

// formatPreview returns the canonical text of value, shortened to fit the
// list preview.
func formatPreview(value any) string {
	text := variables.Format(value)
	if utf8.RuneCountInString(text) <= previewWidth {
		return text
	}

	runes := []rune(text)

	return string(runes[:previewWidth-3]) + "..."
}
