package css

import (
	"testing"
)

func TestTokenizerBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"", []TokenType{TokenEOF}},
		{"   ", []TokenType{TokenWhitespace, TokenEOF}},
		{":", []TokenType{TokenColon, TokenEOF}},
		{",", []TokenType{TokenComma, TokenEOF}},
		{"{", []TokenType{TokenOpenCurly, TokenEOF}},
		{"[]", []TokenType{TokenOpenSquare, TokenCloseSquare, TokenEOF}},
		{"()", []TokenType{TokenOpenParen, TokenCloseParen, TokenEOF}},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tokens := tokenizer.TokenizeAll()

		if len(tokens) != len(tt.expected) {
			t.Errorf("input %q: expected %d tokens, got %d", tt.input, len(tt.expected), len(tokens))
			continue
		}

		for i, tok := range tokens {
			if tok.Type != tt.expected[i] {
				t.Errorf("input %q: token %d: expected %v, got %v", tt.input, i, tt.expected[i], tok.Type)
			}
		}
	}
}

func TestTokenizerIdent(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"foo", "foo"},
		{"Bar", "Bar"},
		{"foo-bar", "foo-bar"},
		{"_foo", "_foo"},
		{"-webkit-transform", "-webkit-transform"},
		{"--custom-prop", "--custom-prop"},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenIdent {
			t.Errorf("input %q: expected IDENT, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected value %q, got %q", tt.input, tt.value, tok.Value)
		}
	}
}

func TestTokenizerHash(t *testing.T) {
	tests := []struct {
		input    string
		value    string
		hashType HashType
	}{
		{"#foo", "foo", HashID},
		{"#123", "123", HashUnrestricted},
		{"#abc123", "abc123", HashID},
		{"#-foo", "-foo", HashID},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenHash {
			t.Errorf("input %q: expected HASH, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected value %q, got %q", tt.input, tt.value, tok.Value)
		}

		if tok.HashType != tt.hashType {
			t.Errorf("input %q: expected hash type %v, got %v", tt.input, tt.hashType, tok.HashType)
		}
	}
}

func TestTokenizerString(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"hello world"`, "hello world"},
		{`"hello\nworld"`, "hellonworld"},   // \n is not an escape in CSS, just n
		{`"hello\a world"`, "hello\nworld"}, // \a is hex 0A (newline), space is consumed as separator
		{`"escaped\"quote"`, `escaped"quote`},
		{`""`, ""},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenString {
			t.Errorf("input %q: expected STRING, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected value %q, got %q", tt.input, tt.value, tok.Value)
		}
	}
}

func TestTokenizerNumber(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"0", "0"},
		{"123", "123"},
		{"-42", "-42"},
		{"+5", "+5"},
		{"3.14", "3.14"},
		{"-0.5", "-0.5"},
		{"1e10", "1e10"},
		{"1E-5", "1E-5"},
		{"2.5e3", "2.5e3"},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenNumber {
			t.Errorf("input %q: expected NUMBER, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected repr %q, got %q", tt.input, tt.value, tok.Value)
		}
	}
}

func TestTokenizerDimension(t *testing.T) {
	// Dimension tokens only matter here as the An+B argument of
	// :nth-child()/:nth-of-type(), e.g. "2n" or "2n+1" split into a
	// dimension token ("2n") followed by a delim/number for "+1".
	tests := []struct {
		input string
		value string
		unit  string
	}{
		{"2n", "2", "n"},
		{"-2n", "-2", "n"},
		{"10n", "10", "n"},
		{"0n", "0", "n"},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenDimension {
			t.Errorf("input %q: expected DIMENSION, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected repr %q, got %q", tt.input, tt.value, tok.Value)
		}

		if tok.Unit != tt.unit {
			t.Errorf("input %q: expected unit %q, got %q", tt.input, tt.unit, tok.Unit)
		}
	}
}

func TestTokenizerFunction(t *testing.T) {
	tests := []struct {
		input string
		name  string
	}{
		{"not(", "not"},
		{"is(", "is"},
		{"where(", "where"},
		{"has(", "has"},
		{"nth-child(", "nth-child"},
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenFunction {
			t.Errorf("input %q: expected FUNCTION, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.name {
			t.Errorf("input %q: expected name %q, got %q", tt.input, tt.name, tok.Value)
		}
	}
}

func TestTokenizerEscapes(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`\41`, "A"},             // Hex escape for 'A'
		{`\000041`, "A"},         // Full 6-digit hex escape
		{`foo\20 bar`, "foo bar"}, // Hex escape for space, needs trailing separator
		{`foo\ bar`, "foo bar"},   // Escaped literal space
	}

	for _, tt := range tests {
		tokenizer := NewTokenizer(tt.input)
		tok := tokenizer.NextToken()

		if tok.Type != TokenIdent {
			t.Errorf("input %q: expected IDENT, got %v", tt.input, tok.Type)
			continue
		}

		if tok.Value != tt.value {
			t.Errorf("input %q: expected value %q, got %q", tt.input, tt.value, tok.Value)
		}
	}
}

func TestTokenizerPreprocessing(t *testing.T) {
	// Test CR LF -> LF
	tokenizer := NewTokenizer("a\r\nb")
	tokens := tokenizer.TokenizeAll()

	if tokens[1].Type != TokenWhitespace {
		t.Errorf("CR LF should become whitespace")
	}

	// Test CR -> LF
	tokenizer = NewTokenizer("a\rb")
	tokens = tokenizer.TokenizeAll()

	if tokens[1].Type != TokenWhitespace {
		t.Errorf("CR should become whitespace")
	}

	// Test null replacement
	tokenizer = NewTokenizer("a\x00b")
	tok := tokenizer.NextToken()
	if tok.Value != "a�b" {
		t.Errorf("null should be replaced with U+FFFD")
	}
}

func TestTokenizerComments(t *testing.T) {
	// Comments are consumed and never surface as their own token.
	tokenizer := NewTokenizer("/* comment */foo")
	tok := tokenizer.NextToken()

	if tok.Type != TokenIdent || tok.Value != "foo" {
		t.Errorf("expected IDENT foo after comment, got %v %q", tok.Type, tok.Value)
	}

	// CSS comments are NOT nested - the first */ ends the comment.
	tokenizer = NewTokenizer("/* a /* b */bar")
	tok = tokenizer.NextToken()
	if tok.Type != TokenIdent || tok.Value != "bar" {
		t.Errorf("expected IDENT bar after comment, got %v %q", tok.Type, tok.Value)
	}
}

func TestTokenizerCompoundSelectorTokens(t *testing.T) {
	// End-to-end sanity check against an actual selector string rather than
	// a stylesheet rule body, since that's the only input this tokenizer
	// needs to support.
	sel := `header div > img:first-child, ns1|child[data-x~="a b" i]`
	tokenizer := NewTokenizer(sel)
	tokens := tokenizer.TokenizeAll()

	var foundHeader, foundGT, foundColon, foundPipe, foundTilde bool
	for _, tok := range tokens {
		switch {
		case tok.Type == TokenIdent && tok.Value == "header":
			foundHeader = true
		case tok.Type == TokenDelim && tok.Delim == '>':
			foundGT = true
		case tok.Type == TokenColon:
			foundColon = true
		case tok.Type == TokenDelim && tok.Delim == '|':
			foundPipe = true
		case tok.Type == TokenDelim && tok.Delim == '~':
			foundTilde = true
		}
	}

	if !foundHeader {
		t.Error("expected to find 'header' ident token")
	}
	if !foundGT {
		t.Error("expected to find '>' combinator delim")
	}
	if !foundColon {
		t.Error("expected to find ':' before first-child")
	}
	if !foundPipe {
		t.Error("expected to find '|' namespace separator")
	}
	if !foundTilde {
		t.Error("expected to find '~' from the ~= attribute operator")
	}
}
