package lexer

import (
	"testing"

	"github.com/aerojs/aerojs/internal/token"
)

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		value   float64
	}{
		{"0", "0", 0},
		{"123", "123", 123},
		{"1.5", "1.5", 1.5},
		{".5", ".5", 0.5},
		{"1.5e10", "1.5e10", 1.5e10},
		{"1e+2", "1e+2", 100},
		{"1e-2", "1e-2", 0.01},
		{"0x1F", "0x1F", 31},
		{"0o17", "0o17", 15},
		{"0b101", "0b101", 5},
		{"1_000_000", "1_000_000", 1000000},
		{"1_000.000_1", "1_000.000_1", 1000.0001},
		{"0x1_F", "0x1_F", 31},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.Next()
			if tok.Type != token.NUMBER {
				t.Fatalf("expected NUMBER, got %s", tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Fatalf("literal mismatch: expected %q, got %q", tt.literal, tok.Literal)
			}
			v, ok := tok.Value.(float64)
			if !ok {
				t.Fatalf("expected float64 value, got %T", tok.Value)
			}
			if v != tt.value {
				t.Fatalf("value mismatch: expected %v, got %v", tt.value, v)
			}
			if len(l.Errors()) != 0 {
				t.Fatalf("unexpected lex errors: %v", l.Errors())
			}
		})
	}
}

func TestLegacyOctalLiteral(t *testing.T) {
	l := New("017")
	tok := l.Next()
	if tok.Type != token.NUMBER {
		t.Fatalf("expected NUMBER, got %s", tok.Type)
	}
	if !tok.HasFlag(token.FlagOctal) {
		t.Fatalf("expected FlagOctal to be set on legacy octal literal")
	}
	if v, _ := tok.Value.(float64); v != 15 {
		t.Fatalf("expected value 15, got %v", tok.Value)
	}
}

func TestLeadingZeroDecimalNotLegacyOctal(t *testing.T) {
	// "09" cannot be a legacy octal literal (9 is not an octal digit), so
	// it must be read as the decimal number 9 with a leading zero digit.
	l := New("09")
	tok := l.Next()
	if tok.Type != token.NUMBER {
		t.Fatalf("expected NUMBER, got %s", tok.Type)
	}
	if tok.HasFlag(token.FlagOctal) {
		t.Fatalf("09 must not be classified as legacy octal")
	}
	if v, _ := tok.Value.(float64); v != 9 {
		t.Fatalf("expected value 9, got %v", tok.Value)
	}
}

func TestBigIntLiteral(t *testing.T) {
	l := New("123n")
	tok := l.Next()
	if tok.Type != token.BIGINT {
		t.Fatalf("expected BIGINT, got %s", tok.Type)
	}
	if tok.Value != "123" {
		t.Fatalf("expected decoded BigInt digits \"123\", got %v", tok.Value)
	}
}

func TestNumericSeparatorBoundaryErrors(t *testing.T) {
	// Each of these places '_' somewhere the grammar forbids it: leading,
	// trailing, doubled, and immediately after a radix prefix or '.'.
	bad := []string{"1_", "1__2", "0x_1", "1._2", "1e_2"}
	for _, src := range bad {
		t.Run(src, func(t *testing.T) {
			l := New(src)
			l.Next()
			if len(l.Errors()) == 0 {
				t.Fatalf("expected a lex error for malformed separator in %q", src)
			}
		})
	}
}
