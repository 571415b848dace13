package format

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len calculates the UTF-16 length of a string
// This is required because Telegram uses UTF-16 code units for entity offsets/lengths
func UTF16Len(s string) int {
	length := 0
	for _, r := range s {
		if r >= 0x10000 {
			length += 2
		} else {
			length++
		}
	}
	return length
}

var headerRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// ParseMarkdown converts the small Markdown subset used by the bot messages
// into Telegram message entities:
//   - # Header -> bold line
//   - **bold**
//   - `code` (contents are never parsed)
//   - _italic_ (only at word boundaries, so custody_primary stays as is)
func ParseMarkdown(text string) ParseResult {
	p := &mdParser{}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			p.write("\n")
		}
		if m := headerRe.FindStringSubmatch(line); m != nil {
			p.span("bold", m[1])
			continue
		}
		p.inline(line)
	}
	return ParseResult{
		Text:     strings.TrimRight(p.out.String(), " \n"),
		Entities: p.entities,
	}
}

type mdParser struct {
	out      strings.Builder
	pos      int // UTF-16 offset of the end of out
	entities []tgbotapi.MessageEntity
}

func (p *mdParser) write(s string) {
	p.out.WriteString(s)
	p.pos += UTF16Len(s)
}

func (p *mdParser) span(kind, inner string) {
	p.entities = append(p.entities, tgbotapi.MessageEntity{
		Type:   kind,
		Offset: p.pos,
		Length: UTF16Len(inner),
	})
	p.write(inner)
}

func (p *mdParser) inline(line string) {
	prev := ' '
	for i := 0; i < len(line); {
		rest := line[i:]
		switch {
		case strings.HasPrefix(rest, "**"):
			if end := strings.Index(rest[2:], "**"); end > 0 {
				p.span("bold", rest[2:2+end])
				i += end + 4
				prev = '*'
				continue
			}
		case rest[0] == '`':
			if end := strings.IndexByte(rest[1:], '`'); end > 0 {
				p.span("code", rest[1:1+end])
				i += end + 2
				prev = '`'
				continue
			}
		case rest[0] == '_' && !isWord(prev):
			if end := closingUnderscore(rest[1:]); end > 0 {
				p.span("italic", rest[1:1+end])
				i += end + 2
				prev = '_'
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(rest)
		p.write(rest[:size])
		prev = r
		i += size
	}
}

// closingUnderscore finds an underscore not followed by a word character.
func closingUnderscore(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[i+1:])
		if i+1 >= len(s) || !isWord(next) {
			return i
		}
	}
	return -1
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
