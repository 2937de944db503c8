package compiler

import (
	"fmt"
)

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent    // Mnemonics, labels and rb
	TokenInt      // Integer literals, sign included
	TokenComma    // ,
	TokenColon    // : (labels and address markers)
	TokenLBracket // [
	TokenRBracket // ]
	TokenPlus     // +
	TokenIllegal
)

var tokenNames = [...]string{
	TokenEOF:      "EOF",
	TokenNewline:  "NEWLINE",
	TokenIdent:    "IDENT",
	TokenInt:      "INT",
	TokenComma:    "COMMA",
	TokenColon:    "COLON",
	TokenLBracket: "LBRACKET",
	TokenRBracket: "RBRACKET",
	TokenPlus:     "PLUS",
	TokenIllegal:  "ILLEGAL",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", uint8(t))
}

var punctuation = map[byte]TokenType{
	'\n': TokenNewline,
	',':  TokenComma,
	':':  TokenColon,
	'[':  TokenLBracket,
	']':  TokenRBracket,
	'+':  TokenPlus,
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer splits assembly source into tokens. Comments run from ; or # to the
// end of the line and produce no token.
type Lexer struct {
	src    string
	pos    int
	line   int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{src: input, line: 1}
}

// Tokenize tokenizes the entire input. The last token is always EOF.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		if typ, ok := punctuation[c]; ok {
			l.emit(typ, l.pos+1)
			if typ == TokenNewline {
				l.line++
			}
			continue
		}

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == ';' || c == '#':
			l.pos = l.scan(l.pos, func(b byte) bool { return b != '\n' })
		case isDigit(c):
			l.emit(TokenInt, l.scan(l.pos, isDigit))
		case c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
			l.emit(TokenInt, l.scan(l.pos+1, isDigit))
		case isIdentStart(c):
			l.emit(TokenIdent, l.scan(l.pos, isIdentPart))
		default:
			l.emit(TokenIllegal, l.pos+1)
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: l.line})
	return l.tokens
}

// emit records src[pos:end] as a token and moves past it.
func (l *Lexer) emit(typ TokenType, end int) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: l.src[l.pos:end], Line: l.line})
	l.pos = end
}

// scan returns the index of the first byte at or after from that fails ok.
func (l *Lexer) scan(from int, ok func(byte) bool) int {
	for from < len(l.src) && ok(l.src[from]) {
		from++
	}
	return from
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '.'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
