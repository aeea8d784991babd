// Package lexer turns an expression's source text into a stream of
// tokens for the parser to consume.
package lexer

import (
	"fmt"

	"github.com/gocronx/matheval/token"
)

// LexError is returned when the source contains an illegal character
// or a malformed numeric literal. Pos is the byte offset at which the
// problem was found.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d: %s", e.Pos, e.Msg)
}

// Lexer holds our object-state.
type Lexer struct {
	position     int    //current character position
	readPosition int    //next character position
	ch           rune   //current character
	characters   []rune //rune slice of input string
}

// New creates a Lexer instance from string input.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input)}
	l.readChar()
	return l
}

// read one forward character
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// NextToken reads the next token, skipping whitespace. On a malformed
// numeric literal or an illegal character it returns a token of type
// token.ERROR together with a non-nil *LexError.
//
// The lexer has no restart facility: re-lex the source from New if a
// fresh pass is needed.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	pos := l.position
	var tok token.Token

	switch l.ch {
	case rune('+'):
		tok = newToken(token.PLUS, l.ch, pos)
	case rune('-'):
		tok = newToken(token.MINUS, l.ch, pos)
	case rune('*'):
		tok = newToken(token.ASTERISK, l.ch, pos)
	case rune('/'):
		tok = newToken(token.SLASH, l.ch, pos)
	case rune('^'):
		tok = newToken(token.POWER, l.ch, pos)
	case rune('('):
		tok = newToken(token.LPAREN, l.ch, pos)
	case rune(')'):
		tok = newToken(token.RPAREN, l.ch, pos)
	case rune(','):
		tok = newToken(token.COMMA, l.ch, pos)
	case rune(0):
		tok = token.Token{Type: token.EOF, Literal: "", Pos: pos}
		return tok, nil
	default:
		if isDigit(l.ch) {
			return l.readNumeral(pos)
		}
		if isIdentStart(l.ch) {
			id := l.readIdentifier()
			return token.Token{Type: token.IDENT, Literal: id, Pos: pos}, nil
		}
		bad := l.ch
		l.readChar()
		return token.Token{Type: token.ERROR, Pos: pos},
			&LexError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", bad)}
	}
	l.readChar()
	return tok, nil
}

// return new token
func newToken(tokenType token.Type, ch rune, pos int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Pos: pos}
}

// skip white space
func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readDigits consumes a maximal run of decimal digits.
func (l *Lexer) readDigits() string {
	str := ""
	for isDigit(l.ch) {
		str += string(l.ch)
		l.readChar()
	}
	return str
}

// readNumeral reads a decimal literal with optional fractional part
// and optional exponent: digits ["." digits] [("e"|"E") ["+"|"-"] digits].
func (l *Lexer) readNumeral(pos int) (token.Token, error) {
	lit := l.readDigits()

	if l.ch == rune('.') {
		if !isDigit(l.peekChar()) {
			return token.Token{Type: token.ERROR, Pos: pos},
				&LexError{Pos: pos, Msg: "malformed numeric literal: digit expected after '.'"}
		}
		lit += string(l.ch)
		l.readChar()
		lit += l.readDigits()
	}

	if l.ch == rune('e') || l.ch == rune('E') {
		mark := l.position
		exp := string(l.ch)
		l.readChar()

		if l.ch == rune('+') || l.ch == rune('-') {
			exp += string(l.ch)
			l.readChar()
		}

		if !isDigit(l.ch) {
			return token.Token{Type: token.ERROR, Pos: mark},
				&LexError{Pos: mark, Msg: "malformed numeric literal: digit expected in exponent"}
		}
		exp += l.readDigits()
		lit += exp
	}

	return token.Token{Type: token.NUMBER, Literal: lit, Pos: pos}, nil
}

// peek character
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// is white space
func isWhitespace(ch rune) bool {
	return ch == rune(' ') || ch == rune('\t') || ch == rune('\n') || ch == rune('\r')
}

// is Digit
func isDigit(ch rune) bool {
	return rune('0') <= ch && ch <= rune('9')
}

// isIdentStart reports whether ch may begin an identifier: a letter
// or an underscore.
func isIdentStart(ch rune) bool {
	return ch == rune('_') ||
		(ch >= rune('a') && ch <= rune('z')) ||
		(ch >= rune('A') && ch <= rune('Z'))
}

// isIdentPart reports whether ch may continue an identifier: a
// letter, digit, or underscore.
func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// readIdentifier reads an identifier: a letter or underscore followed
// by letters, digits, or underscores.
func (l *Lexer) readIdentifier() string {
	id := ""
	for isIdentPart(l.ch) {
		id += string(l.ch)
		l.readChar()
	}
	return id
}
