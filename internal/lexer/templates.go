package lexer

import (
	"strings"

	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// scanTemplateHead reads the opening backtick of a template literal
// through either its closing backtick (TEMPLATE_NOSUB, no substitutions)
// or its first `${` (TEMPLATE_HEAD). Per §4.1, template sub-mode is
// tracked on an explicit brace-depth stack so a later unrelated '}' does
// not prematurely resume the template.
func (l *Lexer) scanTemplateHead(start, triviaLen int, flags token.Flags) token.Token {
	l.readChar() // consume opening '`'
	return l.scanTemplatePart(start, triviaLen, flags, token.TEMPLATE_NOSUB, token.TEMPLATE_HEAD)
}

// scanTemplateContinuation resumes scanning a template body after a `}`
// that closed a `${...}` substitution, through either the closing
// backtick (TEMPLATE_TAIL) or the next `${` (TEMPLATE_MIDDLE).
func (l *Lexer) scanTemplateContinuation(start, triviaLen int, flags token.Flags) token.Token {
	l.readChar() // consume the '}' that closed the substitution
	return l.scanTemplatePart(start, triviaLen, flags, token.TEMPLATE_TAIL, token.TEMPLATE_MIDDLE)
}

// scanTemplatePart implements the shared body-scanning logic for both
// template entry points: it reads cooked template characters (decoding
// escapes the same way string literals do, except that an invalid
// escape yields a nil cooked value per spec rather than an error token)
// until a closing backtick (emitting asClose) or a `${` (emitting
// asMiddle, pushing a new templateFrame at the current brace depth).
func (l *Lexer) scanTemplatePart(start, triviaLen int, flags token.Flags, asClose, asMiddle token.Type) token.Token {
	var cooked strings.Builder
	cookedValid := true
	terminated := false
	isMiddle := false

	for {
		if l.ch == 0 {
			break
		}
		if l.ch == '`' {
			l.readChar()
			terminated = true
			break
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar()
			l.readChar()
			l.templateStack = append(l.templateStack, templateFrame{braceDepth: l.braceDepth})
			terminated = true
			isMiddle = true
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if isLineTerminator(l.ch) {
				if l.ch == '\r' && l.peekChar() == '\n' {
					l.readChar()
				}
				l.readChar()
				continue
			}
			r, octalEscape, ok := l.readEscapeSequence()
			if octalEscape {
				// NoSubstitutionTemplate/TemplateCharacters forbid octal
				// escapes entirely (unlike non-strict string literals); the
				// cooked value becomes undefined but raw scanning continues.
				cookedValid = false
			}
			if !ok {
				cookedValid = false
			}
			if ok && r >= 0 {
				cooked.WriteRune(r)
			}
			continue
		}
		if l.ch == '\r' {
			// Per §11.8.6, CR and CRLF are normalized to LF in the cooked
			// value; the token's Literal keeps the unmodified source text.
			cooked.WriteByte('\n')
			l.readChar()
			if l.ch == '\n' {
				l.readChar()
			}
			continue
		}
		cooked.WriteRune(l.ch)
		l.readChar()
	}

	if !terminated {
		flags |= token.FlagUnterminated
		l.addError(diag.CodeUnterminatedTemplate, start, diag.MsgUnterminatedTemplate)
	}

	lit := l.source[start:l.position]
	typ := asClose
	if isMiddle {
		typ = asMiddle
	}
	var value any
	if cookedValid {
		value = cooked.String()
	}
	return token.Token{Type: typ, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags, Value: value}
}
