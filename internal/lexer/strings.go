package lexer

import (
	"strconv"
	"strings"

	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// scanString reads a single- or double-quoted string literal, decoding
// its escape sequences per §4.1.
func (l *Lexer) scanString(start, triviaLen int, flags token.Flags) token.Token {
	quote := l.ch
	l.readChar()

	var decoded strings.Builder
	terminated := false
	for {
		if l.ch == 0 || isLineTerminator(l.ch) {
			break
		}
		if l.ch == quote {
			l.readChar()
			terminated = true
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if isLineTerminator(l.ch) {
				// Line continuation: escaped newline contributes nothing to
				// the decoded value. CRLF counts as one continuation.
				if l.ch == '\r' && l.peekChar() == '\n' {
					l.readChar()
				}
				l.readChar()
				continue
			}
			r, octalEscape, ok := l.readEscapeSequence()
			if !ok {
				l.addError(diag.CodeInvalidEscape, l.position, diag.MsgInvalidEscape)
			}
			if octalEscape {
				flags |= token.FlagOctalEscape
			}
			if r >= 0 {
				decoded.WriteRune(r)
			}
			continue
		}
		decoded.WriteRune(l.ch)
		l.readChar()
	}

	if !terminated {
		flags |= token.FlagUnterminated
		l.addError(diag.CodeUnterminatedString, start, diag.MsgUnterminatedString)
	}

	lit := l.source[start:l.position]
	return token.Token{Type: token.STRING, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags, Value: decoded.String()}
}

// readEscapeSequence decodes one escape sequence body, assuming the
// leading backslash has already been consumed and l.ch is the character
// following it. Returns the decoded rune (or -1 for an escape that
// contributes no character, which does not occur here but keeps the
// signature uniform with future NUL-escape handling), whether it was a
// legacy octal escape, and whether decoding succeeded.
func (l *Lexer) readEscapeSequence() (r rune, octalEscape bool, ok bool) {
	switch l.ch {
	case 'n':
		l.readChar()
		return '\n', false, true
	case 't':
		l.readChar()
		return '\t', false, true
	case 'r':
		l.readChar()
		return '\r', false, true
	case 'b':
		l.readChar()
		return '\b', false, true
	case 'f':
		l.readChar()
		return '\f', false, true
	case 'v':
		l.readChar()
		return '\v', false, true
	case '0':
		if !isDigit(l.peekChar()) {
			l.readChar()
			return 0, false, true
		}
		return l.readLegacyOctalEscape()
	case '1', '2', '3', '4', '5', '6', '7':
		return l.readLegacyOctalEscape()
	case '8', '9':
		// \8 and \9 are NonOctalDecimalEscapeSequence: valid outside strict
		// mode, decoding to the digit itself.
		d := l.ch
		l.readChar()
		return d, false, true
	case 'x':
		l.readChar()
		start := l.position
		for i := 0; i < 2; i++ {
			if !isHexDigit(l.ch) {
				return 0, false, false
			}
			l.readChar()
		}
		v, err := strconv.ParseUint(l.source[start:l.position], 16, 32)
		if err != nil {
			return 0, false, false
		}
		return rune(v), false, true
	case 'u':
		l.readChar()
		v, ok := l.readUnicodeEscapeValue()
		if !ok {
			return 0, false, false
		}
		return v, false, true
	case '\\', '\'', '"', '`':
		ch := l.ch
		l.readChar()
		return ch, false, true
	default:
		ch := l.ch
		l.readChar()
		return ch, false, true
	}
}

// readLegacyOctalEscape decodes a \0-\377 style escape of up to three
// octal digits, starting at the current (already-consumed-backslash)
// position.
func (l *Lexer) readLegacyOctalEscape() (rune, bool, bool) {
	start := l.position
	maxDigits := 2
	if l.ch <= '3' {
		maxDigits = 3
	}
	for i := 0; i < maxDigits && isOctalDigit(l.ch); i++ {
		l.readChar()
	}
	v, err := strconv.ParseUint(l.source[start:l.position], 8, 32)
	if err != nil {
		return 0, true, false
	}
	return rune(v), true, true
}
