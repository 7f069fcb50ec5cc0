// Package segmenter splits raw pg_dump output into logical top-level
// statements. The input is one complete text buffer; no attempt is made to
// parse statement internals beyond the lexical tracking needed to find
// statement boundaries.
package segmenter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// RawStatement is one logical top-level statement extracted from the dump.
// Immutable once segmented. Line numbers are 1-based positions in the
// original dump text, for diagnostics.
type RawStatement struct {
	Text      string
	StartLine int
	EndLine   int
}

// Segmenter splits SQL dump text into statements while tracking string
// literals and comments so embedded semicolons never produce a boundary.
type Segmenter interface {
	Segment(sql string) ([]RawStatement, error)
}

// segmenter implements Segmenter using a state machine.
type segmenter struct{}

// NewSegmenter creates a new Segmenter instance.
func NewSegmenter() Segmenter {
	return &segmenter{}
}

// lexState represents the current lexical mode of the scanner.
type lexState int

const (
	stateCode lexState = iota
	stateLineComment
	stateBlockComment
	stateSingleQuote
	stateDollarQuote
)

// Segment splits sql into statements terminated by a semicolon in code mode.
// Handles:
// - Single-line comments: -- to end of line
// - Block comments: /* */ (flat, no nesting; pg_dump never emits nested ones)
// - Single-quoted strings: '...' with '' escape
// - Dollar-quoted strings: $$...$$ and $tag$...$tag$
//
// Whitespace/comment-only chunks are dropped silently. A quoted block still
// open at end of input is fatal and returns pgsplit.ErrUnterminatedBlock.
func (s *segmenter) Segment(sql string) ([]RawStatement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, pgsplit.ErrEmptyDump
	}

	var statements []RawStatement
	var current strings.Builder

	state := stateCode
	dollarTag := ""
	line := 1
	openLine := 0  // line where the current quoted block started
	startLine := 0 // line of the current statement's first rune
	hasCode := false

	flush := func(endLine int) {
		text := strings.TrimRight(current.String(), " \t\r\n")
		current.Reset()
		if !hasCode {
			// Whitespace or comments only, dropped silently.
			hasCode = false
			startLine = 0
			return
		}
		statements = append(statements, RawStatement{
			Text:      text,
			StartLine: startLine,
			EndLine:   endLine,
		})
		hasCode = false
		startLine = 0
	}

	runes := []rune(sql)
	i := 0

	for i < len(runes) {
		r := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		// Skip whitespace between statements so leading blank lines never
		// become part of a statement's text.
		if current.Len() == 0 && unicode.IsSpace(r) && state == stateCode {
			if r == '\n' {
				line++
			}
			i++
			continue
		}
		if startLine == 0 {
			startLine = line
		}

		switch state {
		case stateCode:
			switch {
			case r == '-' && next == '-':
				state = stateLineComment
				current.WriteRune(r)
				current.WriteRune(next)
				i += 2
			case r == '/' && next == '*':
				state = stateBlockComment
				openLine = line
				current.WriteRune(r)
				current.WriteRune(next)
				i += 2
			case r == '\'':
				state = stateSingleQuote
				openLine = line
				hasCode = true
				current.WriteRune(r)
				i++
			case r == '$':
				tag := extractDollarTag(runes, i)
				if tag != "" {
					state = stateDollarQuote
					dollarTag = tag
					openLine = line
					hasCode = true
					current.WriteString(tag)
					i += len([]rune(tag))
				} else {
					hasCode = true
					current.WriteRune(r)
					i++
				}
			case r == ';':
				current.WriteRune(r)
				i++
				flush(line)
			default:
				if !unicode.IsSpace(r) {
					hasCode = true
				}
				current.WriteRune(r)
				if r == '\n' {
					line++
				}
				i++
			}

		case stateLineComment:
			current.WriteRune(r)
			if r == '\n' {
				line++
				state = stateCode
			}
			i++

		case stateBlockComment:
			if r == '*' && next == '/' {
				current.WriteRune(r)
				current.WriteRune(next)
				state = stateCode
				i += 2
			} else {
				current.WriteRune(r)
				if r == '\n' {
					line++
				}
				i++
			}

		case stateSingleQuote:
			current.WriteRune(r)
			if r == '\'' {
				if next == '\'' {
					// Escaped quote ''
					current.WriteRune(next)
					i += 2
				} else {
					state = stateCode
					i++
				}
			} else {
				if r == '\n' {
					line++
				}
				i++
			}

		case stateDollarQuote:
			if matchesDollarTag(runes, i, dollarTag) {
				current.WriteString(dollarTag)
				i += len([]rune(dollarTag))
				state = stateCode
				dollarTag = ""
			} else {
				current.WriteRune(r)
				if r == '\n' {
					line++
				}
				i++
			}
		}
	}

	switch state {
	case stateSingleQuote:
		return nil, fmt.Errorf("string literal opened at line %d: %w", openLine, pgsplit.ErrUnterminatedBlock)
	case stateDollarQuote:
		return nil, fmt.Errorf("dollar quote %s opened at line %d: %w", dollarTag, openLine, pgsplit.ErrUnterminatedBlock)
	}

	// Trailing text without a terminating semicolon is still a statement;
	// nothing from the dump may be dropped.
	flush(line)

	return statements, nil
}

// extractDollarTag extracts a dollar-quote tag starting at position i.
// Returns the full tag (e.g., "$$" or "$tag$") or empty string if not a valid tag.
func extractDollarTag(runes []rune, i int) string {
	if i >= len(runes) || runes[i] != '$' {
		return ""
	}

	j := i + 1
	for j < len(runes) {
		r := runes[j]
		if r == '$' {
			return string(runes[i : j+1])
		}
		if j == i+1 {
			// First char after $ must be a letter or underscore; a digit
			// here means a positional parameter like $1, not a tag.
			if !unicode.IsLetter(r) && r != '_' {
				return ""
			}
		} else {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return ""
			}
		}
		j++
	}

	return ""
}

// matchesDollarTag checks if the runes starting at position i match the given dollar tag.
func matchesDollarTag(runes []rune, i int, tag string) bool {
	tagRunes := []rune(tag)
	if i+len(tagRunes) > len(runes) {
		return false
	}

	for j, tr := range tagRunes {
		if runes[i+j] != tr {
			return false
		}
	}
	return true
}
