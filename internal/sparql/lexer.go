package sparql

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a query token
type TokenType int

const (
	TOKEN_EOF TokenType = iota
	TOKEN_PREFIX
	TOKEN_SELECT
	TOKEN_DISTINCT
	TOKEN_FROM
	TOKEN_WHERE
	TOKEN_UNION
	TOKEN_A
	TOKEN_VAR
	TOKEN_IRIREF
	TOKEN_PNAME
	TOKEN_STRING
	TOKEN_LANGTAG
	TOKEN_INTEGER
	TOKEN_DOUBLE_CARET
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_DOT
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:          "end of query",
	TOKEN_PREFIX:       "PREFIX",
	TOKEN_SELECT:       "SELECT",
	TOKEN_DISTINCT:     "DISTINCT",
	TOKEN_FROM:         "FROM",
	TOKEN_WHERE:        "WHERE",
	TOKEN_UNION:        "UNION",
	TOKEN_A:            "'a'",
	TOKEN_VAR:          "variable",
	TOKEN_IRIREF:       "IRI",
	TOKEN_PNAME:        "prefixed name",
	TOKEN_STRING:       "string",
	TOKEN_LANGTAG:      "language tag",
	TOKEN_INTEGER:      "integer",
	TOKEN_DOUBLE_CARET: "'^^'",
	TOKEN_LBRACE:       "'{'",
	TOKEN_RBRACE:       "'}'",
	TOKEN_DOT:          "'.'",
}

// String returns a human-readable name for the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Keywords maps case-insensitive keywords to token types
var Keywords = map[string]TokenType{
	"PREFIX":   TOKEN_PREFIX,
	"SELECT":   TOKEN_SELECT,
	"DISTINCT": TOKEN_DISTINCT,
	"FROM":     TOKEN_FROM,
	"WHERE":    TOKEN_WHERE,
	"UNION":    TOKEN_UNION,
}

// Token is a single lexical token
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
	Column  int
}

// SyntaxError is a positioned query syntax error
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query %d:%d: %s", e.Line, e.Column, e.Message)
}

// Lexer tokenizes query text. Not thread-safe.
type Lexer struct {
	source  string
	start   int
	current int
	line    int
	column  int
	tokens  []Token

	startColumn int
}

// NewLexer creates a lexer for the given query text
func NewLexer(source string) *Lexer {
	return &Lexer{source: source, line: 1, column: 1, tokens: make([]Token, 0)}
}

// ScanTokens tokenizes the query. Lexing stops at the first error.
func (l *Lexer) ScanTokens() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.isAtEnd() {
			break
		}
		l.start = l.current
		l.startColumn = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: TOKEN_EOF, Line: l.line, Column: l.column})
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	c := l.advance()
	switch {
	case c == '{':
		l.addToken(TOKEN_LBRACE, "")
	case c == '}':
		l.addToken(TOKEN_RBRACE, "")
	case c == '.':
		l.addToken(TOKEN_DOT, "")
	case c == '^':
		if l.peek() != '^' {
			return l.errorf("unexpected character '^'")
		}
		l.advance()
		l.addToken(TOKEN_DOUBLE_CARET, "")
	case c == '?' || c == '$':
		for isWordChar(l.peek()) {
			l.advance()
		}
		name := l.source[l.start+1 : l.current]
		if name == "" {
			return l.errorf("empty variable name")
		}
		l.addToken(TOKEN_VAR, name)
	case c == '<':
		start := l.current
		for !l.isAtEnd() && l.peek() != '>' {
			if strings.ContainsRune(" \t\n\"{}|^`\\<", rune(l.peek())) {
				return l.errorf("invalid character %q in IRI", l.peek())
			}
			l.advance()
		}
		if l.isAtEnd() {
			return l.errorf("unterminated IRI")
		}
		iri := l.source[start:l.current]
		l.advance()
		l.addToken(TOKEN_IRIREF, iri)
	case c == '"':
		return l.string()
	case c == '@':
		for isWordChar(l.peek()) || l.peek() == '-' {
			l.advance()
		}
		tag := l.source[l.start+1 : l.current]
		if tag == "" {
			return l.errorf("empty language tag")
		}
		l.addToken(TOKEN_LANGTAG, strings.ToLower(tag))
	case c == '-' || c == '+' || isDigit(c):
		for isDigit(l.peek()) {
			l.advance()
		}
		lexeme := l.source[l.start:l.current]
		if lexeme == "-" || lexeme == "+" {
			return l.errorf("unexpected character '%s'", lexeme)
		}
		l.addToken(TOKEN_INTEGER, lexeme)
	case c == ':' || isWordChar(c):
		return l.word()
	default:
		return l.errorf("unexpected character '%c'", c)
	}
	return nil
}

func (l *Lexer) word() error {
	for isWordChar(l.peek()) || l.peek() == ':' || l.peek() == '-' ||
		(l.peek() == '.' && isWordChar(l.peekNext())) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	if strings.Contains(text, ":") {
		l.addToken(TOKEN_PNAME, text)
		return nil
	}
	if text == "a" {
		l.addToken(TOKEN_A, "")
		return nil
	}
	if tt, ok := Keywords[strings.ToUpper(text)]; ok {
		l.addToken(tt, "")
		return nil
	}
	return l.errorf("unexpected word %q", text)
}

func (l *Lexer) string() error {
	var value strings.Builder
	for {
		if l.isAtEnd() || l.peek() == '\n' {
			return l.errorf("unterminated string")
		}
		c := l.advance()
		if c == '"' {
			break
		}
		if c != '\\' {
			value.WriteByte(c)
			continue
		}
		switch esc := l.advance(); esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case '"', '\\', '\'':
			value.WriteByte(esc)
		default:
			return l.errorf("unknown escape sequence '\\%c'", esc)
		}
	}
	l.addToken(TOKEN_STRING, value.String())
	return nil
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case '\n':
			l.advance()
			l.line++
			l.column = 1
		case '#':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) addToken(tokenType TokenType, literal string) {
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.line,
		Column:  l.startColumn,
	})
}

func (l *Lexer) errorf(format string, args ...interface{}) error {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    l.line,
		Column:  l.startColumn,
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_'
}
