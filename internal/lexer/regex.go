package lexer

import (
	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// scanRegex reads a regular expression literal body and its trailing
// flags. Per §4.1 the lexer performs no grammar validation of the
// pattern body beyond character-class-aware delimiter tracking (a '/'
// inside a `[...]` character class does not terminate the literal) and
// leaves pattern compilation to the runtime's regex construction.
func (l *Lexer) scanRegex(start, triviaLen int, flags token.Flags) token.Token {
	l.readChar() // consume opening '/'

	inClass := false
	terminated := false
	for {
		if l.ch == 0 || isLineTerminator(l.ch) {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 || isLineTerminator(l.ch) {
				break
			}
			l.readChar()
			continue
		}
		if l.ch == '[' {
			inClass = true
			l.readChar()
			continue
		}
		if l.ch == ']' && inClass {
			inClass = false
			l.readChar()
			continue
		}
		if l.ch == '/' && !inClass {
			l.readChar()
			terminated = true
			break
		}
		l.readChar()
	}

	if !terminated {
		flags |= token.FlagUnterminated
		l.addError(diag.CodeUnterminatedRegex, start, diag.MsgUnterminatedRegex)
		lit := l.source[start:l.position]
		return token.Token{Type: token.REGEX, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags}
	}

	bodyEnd := l.position - 1
	for isIDContinue(l.ch) {
		l.readChar()
	}

	lit := l.source[start:l.position]
	parts := [2]string{l.source[start+1 : bodyEnd], l.source[bodyEnd+1 : l.position]}
	return token.Token{Type: token.REGEX, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags, Value: parts}
}
