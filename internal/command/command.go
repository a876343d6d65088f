// Package command classifies inbound message text into a tagged command.
// Parsing is an ordered set of match rules evaluated top to bottom,
// first-match-wins, so legacy token precedence stays deterministic.
package command

import (
	"strings"

	"hampuff/internal/propagation"
)

// Kind tags the recognized command families.
type Kind string

const (
	KindPropagation   Kind = "propagation"
	KindRegister      Kind = "register"
	KindOptIn         Kind = "opt_in"
	KindOptOut        Kind = "opt_out"
	KindHelp          Kind = "help"
	KindLegacyEastern Kind = "legacy_eastern"
	KindLegacyPacific Kind = "legacy_pacific"
	KindRedirect      Kind = "redirect"
	KindProfanity     Kind = "profanity"
	KindUnknown       Kind = "unknown"
)

// Command is one classified message.
type Command struct {
	Kind Kind
	// Timezone is set for propagation and legacy lookups.
	Timezone propagation.Timezone
	// Phone is the optional explicit number following start/stop tokens.
	Phone string
	// Note carries rule-specific reply text: the corrective hint for a bad
	// propagation argument, or the canned profanity comeback.
	Note string
}

// Parser holds the configurable pieces of classification.
type Parser struct {
	profanity map[string]string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithProfanity replaces the profanity word-to-reply table.
func WithProfanity(replies map[string]string) ParserOption {
	return func(p *Parser) {
		p.profanity = replies
	}
}

// NewParser creates a parser with the stock profanity table.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		profanity: map[string]string{
			"fuck": "Go fuck yourself, too",
			"shit": "Go shit your pants",
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TimezoneHint is the corrective reply for a prop command with a bad or
// missing timezone.
func TimezoneHint() string {
	return "Unknown timezone. Supported: " + strings.Join(propagation.SupportedTokens(), ", ") +
		". Try: prop EST"
}

// Parse classifies text. It never fails: unparseable input is KindUnknown.
func (p *Parser) Parse(text string) Command {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return Command{Kind: KindUnknown}
	}
	head := fields[0]

	// 1. Legacy tokens outrank everything; trailing text is ignored.
	switch head {
	case "hampuffe":
		return Command{Kind: KindLegacyEastern, Timezone: propagation.Eastern()}
	case "hampuffp":
		return Command{Kind: KindLegacyPacific, Timezone: propagation.Pacific()}
	}

	// 2-4. Registration, opt state, help tokens.
	switch head {
	case "start", "register":
		return Command{Kind: KindOptIn, Phone: argAfter(trimmed)}
	case "stop", "unregister":
		return Command{Kind: KindOptOut, Phone: argAfter(trimmed)}
	case "help", "?":
		return Command{Kind: KindHelp}
	}

	// 5. Generic propagation lookup with a timezone argument.
	if head == "prop" || head == "propagation" {
		if len(fields) >= 2 {
			if tz, ok := propagation.ParseTimezone(fields[1]); ok {
				return Command{Kind: KindPropagation, Timezone: tz}
			}
		}
		return Command{Kind: KindUnknown, Note: TimezoneHint()}
	}

	// 6. Profanity gets its reply before the 4-character redirect so
	// four-letter words do not read as airport codes.
	for word, reply := range p.profanity {
		if strings.Contains(lower, word) {
			return Command{Kind: KindProfanity, Note: reply}
		}
	}

	// 7. Exactly four characters looks like an airport code; point the
	// sender at the sibling service.
	if len([]rune(trimmed)) == 4 {
		return Command{Kind: KindRedirect}
	}

	return Command{Kind: KindUnknown}
}

// argAfter returns the token following the command word, if any. Used for
// the API-style "start <phone>" form; bare commands leave it empty.
func argAfter(trimmed string) string {
	fields := strings.Fields(trimmed)
	if len(fields) >= 2 {
		return fields[1]
	}
	return ""
}
