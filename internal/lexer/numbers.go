package lexer

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/aerojs/aerojs/internal/diag"
	"github.com/aerojs/aerojs/internal/token"
)

// scanNumber reads a numeric literal per §4.1: decimal (optional
// fraction/exponent), 0x/0o/0b radix-prefixed, and legacy octal (digits
// after a leading 0 with no radix letter), with '_' digit separators and
// an optional trailing 'n' BigInt marker.
func (l *Lexer) scanNumber(start, triviaLen int, flags token.Flags) token.Token {
	isBigInt := false
	isLegacyOctal := false
	hasSeparator := false
	malformed := false

	digitRun := func(isDigit func(rune) bool) {
		sawDigit := false
		lastWasSep := false
		for {
			if isDigit(l.ch) {
				sawDigit = true
				lastWasSep = false
				l.readChar()
				continue
			}
			if l.ch == '_' {
				hasSeparator = true
				if !sawDigit || lastWasSep {
					malformed = true
				}
				lastWasSep = true
				l.readChar()
				continue
			}
			break
		}
		if lastWasSep {
			malformed = true
		}
	}

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		if l.ch == '_' {
			malformed = true
		}
		digitRun(isHexDigit)
	} else if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		if l.ch == '_' {
			malformed = true
		}
		digitRun(isOctalDigit)
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		if l.ch == '_' {
			malformed = true
		}
		digitRun(isBinaryDigit)
	} else if l.ch == '0' && isOctalDigit(l.peekChar()) {
		isLegacyOctal = true
		l.readChar()
		for isOctalDigit(l.ch) {
			l.readChar()
		}
		// A legacy-octal-looking run followed by a non-octal digit (8/9)
		// or '.' is actually a decimal literal with a leading zero.
		if isDigit(l.ch) || l.ch == '.' || l.ch == 'e' || l.ch == 'E' {
			isLegacyOctal = false
			for isDigit(l.ch) {
				l.readChar()
			}
			scanDecimalTail(l, &malformed, &hasSeparator)
		}
	} else {
		digitRun(isDigit)
		scanDecimalTail(l, &malformed, &hasSeparator)
	}

	if !isLegacyOctal && l.ch == 'n' {
		isBigInt = true
		l.readChar()
	}

	lit := l.source[start:l.position]
	if malformed {
		l.addError(diag.CodeInvalidSeparator, start, diag.MsgInvalidSeparator)
	}

	var value any
	clean := strings.ReplaceAll(lit, "_", "")
	clean = strings.TrimSuffix(clean, "n")
	switch {
	case isBigInt:
		value = parseBigIntLiteral(clean)
	case isLegacyOctal:
		if v, err := strconv.ParseInt(clean[1:], 8, 64); err == nil {
			value = float64(v)
		}
		flags |= token.FlagOctal
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		if v, err := strconv.ParseUint(clean[2:], 16, 64); err == nil {
			value = float64(v)
		}
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		if v, err := strconv.ParseUint(clean[2:], 8, 64); err == nil {
			value = float64(v)
		}
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		if v, err := strconv.ParseUint(clean[2:], 2, 64); err == nil {
			value = float64(v)
		}
	default:
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			value = v
		}
	}

	if hasSeparator {
		flags |= token.FlagSeparators
	}
	typ := token.NUMBER
	if isBigInt {
		typ = token.BIGINT
	}
	return token.Token{Type: typ, Literal: lit, Span: token.Span{Offset: start, Length: l.position - start}, TriviaLen: triviaLen, Flags: flags, Value: value}
}

// scanDecimalTail consumes an optional fractional part and exponent for
// a decimal literal, tracking malformed separator placement.
func scanDecimalTail(l *Lexer, malformed *bool, hasSeparator *bool) {
	if l.ch == '.' {
		l.readChar()
		sawDigit := false
		lastWasSep := false
		for isDigit(l.ch) || l.ch == '_' {
			if l.ch == '_' {
				*hasSeparator = true
				if !sawDigit || lastWasSep {
					*malformed = true
				}
				lastWasSep = true
			} else {
				sawDigit = true
				lastWasSep = false
			}
			l.readChar()
		}
		if lastWasSep {
			*malformed = true
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if l.ch == '_' {
			*malformed = true
		}
		sawDigit := false
		lastWasSep := false
		for isDigit(l.ch) || l.ch == '_' {
			if l.ch == '_' {
				*hasSeparator = true
				if !sawDigit || lastWasSep {
					*malformed = true
				}
				lastWasSep = true
			} else {
				sawDigit = true
				lastWasSep = false
			}
			l.readChar()
		}
		if lastWasSep {
			*malformed = true
		}
	}
}

func isOctalDigit(r rune) bool  { return r >= '0' && r <= '7' }
func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }

// parseBigIntLiteral parses the digit text of a BigInt literal (radix
// prefix still present, 'n' suffix and separators already stripped) into
// a decimal string suitable for a big.Int-backed Value.
func parseBigIntLiteral(digits string) string {
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		if v, ok := new(big.Int).SetString(digits[2:], 16); ok {
			return v.String()
		}
	case strings.HasPrefix(digits, "0o") || strings.HasPrefix(digits, "0O"):
		if v, ok := new(big.Int).SetString(digits[2:], 8); ok {
			return v.String()
		}
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		if v, ok := new(big.Int).SetString(digits[2:], 2); ok {
			return v.String()
		}
	}
	return digits
}
