package lexer

import (
	"strconv"
	"strings"

	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// scanIdentifier reads an identifier or keyword, decoding any \uHHHH /
// \u{H+} escapes it contains. Per §4.1, keyword classification happens
// against the decoded form, and any escape sets FlagEscaped on the
// token. The parser does not consult FlagEscaped, so an escaped spelling
// of a reserved word is parsed as that keyword.
func (l *Lexer) scanIdentifier(start, triviaLen int, flags token.Flags) token.Token {
	var decoded strings.Builder
	escaped := false

	readOne := func() bool {
		if l.ch == '\\' && l.peekChar() == 'u' {
			escaped = true
			l.readChar() // backslash
			l.readChar() // u
			r, ok := l.readUnicodeEscapeValue()
			if !ok {
				return false
			}
			decoded.WriteRune(r)
			return true
		}
		decoded.WriteRune(l.ch)
		l.readChar()
		return true
	}

	if !readOne() {
		l.addError(diag.CodeInvalidUnicode, start, diag.MsgInvalidUnicode)
	}
	for isIDContinue(l.ch) || (l.ch == '\\' && l.peekChar() == 'u') {
		if !readOne() {
			l.addError(diag.CodeInvalidUnicode, start, diag.MsgInvalidUnicode)
			break
		}
	}

	lit := l.source[start:l.position]
	name := decoded.String()
	if escaped {
		flags |= token.FlagEscaped
	}
	typ := token.LookupIdent(name)
	return token.Token{Type: typ, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags, Value: name}
}

// readUnicodeEscapeValue decodes the hex digits of a \u escape, assuming
// the leading "\u" has already been consumed. Supports both \uHHHH and
// \u{H+} forms; the latter allows any codepoint up to 0x10FFFF and is
// rejected above that, per §4.1.
func (l *Lexer) readUnicodeEscapeValue() (rune, bool) {
	if l.ch == '{' {
		l.readChar()
		start := l.position
		for l.ch != '}' && l.ch != 0 {
			l.readChar()
		}
		hex := l.source[start:l.position]
		if l.ch == '}' {
			l.readChar()
		} else {
			return 0, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || v > 0x10FFFF {
			return 0, false
		}
		return rune(v), true
	}
	start := l.position
	for i := 0; i < 4; i++ {
		if !isHexDigit(l.ch) {
			return 0, false
		}
		l.readChar()
	}
	v, err := strconv.ParseUint(l.source[start:l.position], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
