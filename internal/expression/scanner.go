// Package expression is the sandboxed calculator behind every formula.
//
// Formulas are compiled and run by github.com/expr-lang/expr, but expr is a
// full expression language (member access, builtins, closures, string ops).
// Before anything reaches the compiler the source is scanned against a much
// smaller grammar:
//
//	expression := numeric literals | identifiers | + - * / ^ ( ) | whitespace
//
// Identifiers match [A-Za-z_][A-Za-z0-9_]*. Anything else, an identifier
// followed by "(" (a call), or one of expr's reserved words is rejected with
// ErrUnsupported, as is "**" (powers are written with ^). expr's builtin
// functions are disabled at compile time, so names like max or count are
// ordinary variables. The scanner is also the single source of truth for which
// variables a formula references.
package expression

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Errors returned by Scan and Evaluator.Evaluate. Callers match with errors.Is.
var (
	ErrSyntax      = errors.New("malformed expression")
	ErrUnsupported = errors.New("unsupported syntax")
	ErrUndefined   = errors.New("undefined variable")
	ErrNonFinite   = errors.New("non-finite result")
	ErrEvaluation  = errors.New("evaluation failed")
)

// TokenKind classifies a scanned token.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenIdent
	TokenOperator
	TokenLParen
	TokenRParen
)

// Token is one lexical unit of a formula.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset in the source
}

// reserved are words expr parses as operators or literals. Letting them
// through would widen the grammar (boolean logic, membership, nil).
var reserved = map[string]bool{
	"and": true, "or": true, "not": true, "in": true,
	"matches": true, "contains": true, "startsWith": true, "endsWith": true,
	"true": true, "false": true, "nil": true,
	"let": true, "if": true, "else": true,
}

// Scan tokenizes src against the restricted grammar.
func Scan(src string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isSpace(c):
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i = scanNumber(src, i)
			if i < len(src) && isIdentStart(src[i]) {
				return nil, fmt.Errorf("%w: invalid number %q at position %d", ErrSyntax, src[start:i+1], start)
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: src[start:i], Pos: start})

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if reserved[word] {
				return nil, fmt.Errorf("%w: reserved word %q at position %d", ErrUnsupported, word, start)
			}
			if next := skipSpace(src, i); next < len(src) && src[next] == '(' {
				return nil, fmt.Errorf("%w: function call %q at position %d", ErrUnsupported, word, start)
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Text: word, Pos: start})

		case c == '*' && len(tokens) > 0 && tokens[len(tokens)-1].Text == "*":
			return nil, fmt.Errorf("%w: operator \"**\" at position %d, use ^ for powers", ErrUnsupported, tokens[len(tokens)-1].Pos)

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			tokens = append(tokens, Token{Kind: TokenOperator, Text: string(c), Pos: i})
			i++

		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Pos: i})
			i++

		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Pos: i})
			i++

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrUnsupported, c, i)
		}
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	return tokens, nil
}

// canonical rebuilds the source expr compiles from scanned tokens. Every
// number literal is rewritten as a float literal so arithmetic never runs
// in expr's int64 mode, where large products wrap and long literals fail
// to parse.
func canonical(tokens []Token) (string, error) {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if tok.Kind != TokenNumber {
			parts[i] = tok.Text
			continue
		}
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: number %q out of range at position %d", ErrSyntax, tok.Text, tok.Pos)
		}
		lit := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(lit, ".eE") {
			lit += ".0"
		}
		parts[i] = lit
	}
	return strings.Join(parts, " "), nil
}

// Identifiers returns the identifier-like tokens of src, de-duplicated, in
// order of first appearance. It is lenient: characters outside the grammar
// are skipped rather than rejected, so a half-typed draft still reports the
// variables it mentions. Digits glued to a number ("2e3", "10x") are part of
// that number, not identifiers.
func Identifiers(src string) []string {
	seen := make(map[string]bool)
	var names []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			i = scanNumber(src, i)
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			name := src[start:i]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		default:
			i++
		}
	}
	return names
}

// IsIdentifier reports whether name can be referenced as a variable from an
// expression: it matches the identifier pattern and is not a reserved word.
func IsIdentifier(name string) bool {
	if name == "" || reserved[name] || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}
	return true
}

// scanNumber consumes digits, one fractional part and an optional exponent
// starting at i, returning the index just past the literal.
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
