package rpal

import (
	"reflect"
	"testing"
)

func scan(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return toks
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == TokEOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := scan(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_LetExpression(t *testing.T) {
	wantTypes(t, "let x = 5 in Print(x)",
		[]TokenType{TokIdentifier, TokIdentifier, TokOperator, TokInteger, TokIdentifier,
			TokIdentifier, TokLParen, TokIdentifier, TokRParen})
}

func Test_Lexer_OperatorRunsGreedy(t *testing.T) {
	toks := wantTypes(t, "x ** 2", []TokenType{TokIdentifier, TokOperator, TokInteger})
	if toks[1].Value != "**" {
		t.Fatalf("expected '**' operator run, got %q", toks[1].Value)
	}
}

func Test_Lexer_LineComment(t *testing.T) {
	toks := scan(t, "x // trailing comment\ny")
	got := typesWithoutEOF(toks)
	want := []TokenType{TokIdentifier, TokIdentifier}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[1].Line != 2 {
		t.Fatalf("expected identifier on line 2, got line %d", toks[1].Line)
	}
}

func Test_Lexer_StringEscapes(t *testing.T) {
	toks := scan(t, `'a\tb\nc\\d\'e'`)
	if toks[0].Type != TokString {
		t.Fatalf("expected string token, got %v", toks[0].Type)
	}
	if toks[0].Value != "a\tb\nc\\d'e" {
		t.Fatalf("got %q", toks[0].Value)
	}
}

func Test_Lexer_UnterminatedString_IsLexError(t *testing.T) {
	_, err := NewLexer("'no closing quote").Scan()
	if err == nil {
		t.Fatalf("expected LexError for unterminated string")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func Test_Lexer_IllegalCharacter(t *testing.T) {
	_, err := NewLexer("x ` y").Scan()
	if err == nil {
		t.Fatalf("expected LexError for illegal character")
	}
}

func Test_Lexer_IdentifierAllowsDigitsAndUnderscore(t *testing.T) {
	toks := scan(t, "foo_bar2")
	if len(toks) < 1 || toks[0].Value != "foo_bar2" {
		t.Fatalf("got %v", toks)
	}
}

func Test_Lexer_Punctuation(t *testing.T) {
	wantTypes(t, "(a, b)",
		[]TokenType{TokLParen, TokIdentifier, TokComma, TokIdentifier, TokRParen})
}
