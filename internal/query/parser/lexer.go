// Package parser turns query text into an internal/query/ast.Expression
// tree plus the minimal statement shapes the validator dispatches on.
// Purely syntactic, per SPEC_FULL 4.1: it never consults the catalog,
// and every token/node keeps the {start:(line,col), end:(line,col)}
// span core/types/span.rs defines (see internal/query/ast.Span, ported
// from that file) so parse errors and later validation errors can both
// point at source text.
package parser

import (
	"strings"
	"unicode"

	"github.com/ali01/graphd/internal/query/ast"
)

// TokenKind enumerates the lexer's token classes.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokKeyword
	TokInt
	TokFloat
	TokString
	TokParamRef // $name or @name, the sequential-statement variable prefixes
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokComma
	TokDot
	TokColon
	TokPipe
	TokSemicolon
	TokOp // any of the operator punctuation below, disambiguated by Text
)

// Token is one lexical unit plus its span.
type Token struct {
	Kind TokenKind
	Text string
	Span ast.Span
}

var keywords = map[string]bool{
	"match": true, "where": true, "return": true, "create": true,
	"drop": true, "alter": true, "desc": true, "describe": true, "show": true,
	"space": true, "spaces": true, "tag": true, "tags": true,
	"edge": true, "edges": true, "index": true, "indexes": true, "indices": true,
	"rebuild": true, "user": true, "users": true, "password": true,
	"and": true, "or": true, "xor": true, "not": true, "in": true,
	"contains": true, "starts": true, "ends": true, "with": true,
	"is": true, "null": true, "true": true, "false": true,
	"as": true, "unwind": true, "go": true, "find": true, "shortest": true,
	"path": true, "all": true, "paths": true, "over": true, "steps": true,
	"subgraph": true, "yield": true, "order": true, "by": true, "asc": true,
	"limit": true, "skip": true, "union": true, "intersect": true,
	"minus": true, "distinct": true, "count": true, "sum": true, "avg": true,
	"min": true, "max": true, "collect": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "like": true, "ilike": true,
	"kill": true, "query": true, "queries": true,
}

// Lexer scans query text into a flat token stream, tracking line/column
// for every token so the parser can stamp every AST node with a Span.
type Lexer struct {
	src       string
	pos       int
	line, col int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) position() ast.Pos { return ast.Pos{Line: l.line, Col: l.col} }

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.peekByte()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.advance()
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

// Next returns the next token, advancing the lexer. TokEOF is returned
// (repeatedly) once the input is exhausted.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()
	start := l.position()
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Span: ast.SpanOf(start)}, nil
	}

	c := l.peekByte()
	switch {
	case c == '(':
		l.advance()
		return Token{Kind: TokLParen, Text: "(", Span: ast.SpanOf(start)}, nil
	case c == ')':
		l.advance()
		return Token{Kind: TokRParen, Text: ")", Span: ast.SpanOf(start)}, nil
	case c == '[':
		l.advance()
		return Token{Kind: TokLBracket, Text: "[", Span: ast.SpanOf(start)}, nil
	case c == ']':
		l.advance()
		return Token{Kind: TokRBracket, Text: "]", Span: ast.SpanOf(start)}, nil
	case c == '{':
		l.advance()
		return Token{Kind: TokLBrace, Text: "{", Span: ast.SpanOf(start)}, nil
	case c == '}':
		l.advance()
		return Token{Kind: TokRBrace, Text: "}", Span: ast.SpanOf(start)}, nil
	case c == ',':
		l.advance()
		return Token{Kind: TokComma, Text: ",", Span: ast.SpanOf(start)}, nil
	case c == '.':
		l.advance()
		return Token{Kind: TokDot, Text: ".", Span: ast.SpanOf(start)}, nil
	case c == ':':
		l.advance()
		return Token{Kind: TokColon, Text: ":", Span: ast.SpanOf(start)}, nil
	case c == '|':
		l.advance()
		return Token{Kind: TokPipe, Text: "|", Span: ast.SpanOf(start)}, nil
	case c == ';':
		l.advance()
		return Token{Kind: TokSemicolon, Text: ";", Span: ast.SpanOf(start)}, nil
	case c == '\'' || c == '"':
		return l.lexString(c, start)
	case c == '$' || c == '@':
		return l.lexParamRef(c, start)
	case isDigit(c):
		return l.lexNumber(start)
	case isIdentStart(rune(c)):
		return l.lexIdentOrKeyword(start)
	default:
		return l.lexOperator(start)
	}
}

func (l *Lexer) lexString(quote byte, start ast.Pos) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, &Error{Message: "unterminated string literal", Span: ast.NewSpan(start, l.position())}
		}
		c := l.peekByte()
		if c == quote {
			l.advance()
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(l.advance())
	}
	return Token{Kind: TokString, Text: sb.String(), Span: ast.NewSpan(start, l.position())}, nil
}

func (l *Lexer) lexParamRef(prefix byte, start ast.Pos) (Token, error) {
	l.advance() // $ or @
	var sb strings.Builder
	sb.WriteByte(prefix)
	for l.pos < len(l.src) && isIdentPart(rune(l.peekByte())) {
		sb.WriteByte(l.advance())
	}
	return Token{Kind: TokParamRef, Text: sb.String(), Span: ast.NewSpan(start, l.position())}, nil
}

func (l *Lexer) lexNumber(start ast.Pos) (Token, error) {
	var sb strings.Builder
	isFloat := false
	for l.pos < len(l.src) && isDigit(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	if l.pos < len(l.src) && l.peekByte() == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		sb.WriteByte(l.advance())
		for l.pos < len(l.src) && isDigit(l.peekByte()) {
			sb.WriteByte(l.advance())
		}
	}
	kind := TokInt
	if isFloat {
		kind = TokFloat
	}
	return Token{Kind: kind, Text: sb.String(), Span: ast.NewSpan(start, l.position())}, nil
}

func (l *Lexer) lexIdentOrKeyword(start ast.Pos) (Token, error) {
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentPart(rune(l.peekByte())) {
		sb.WriteByte(l.advance())
	}
	text := sb.String()
	kind := TokIdent
	if keywords[strings.ToLower(text)] {
		kind = TokKeyword
	}
	return Token{Kind: kind, Text: text, Span: ast.NewSpan(start, l.position())}, nil
}

var twoCharOps = []string{"<=", ">=", "==", "!=", "<>"}

func (l *Lexer) lexOperator(start ast.Pos) (Token, error) {
	for _, op := range twoCharOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.advance()
			l.advance()
			return Token{Kind: TokOp, Text: op, Span: ast.NewSpan(start, l.position())}, nil
		}
	}
	c := l.advance()
	if strings.ContainsRune("+-*/%<>=!", rune(c)) {
		return Token{Kind: TokOp, Text: string(c), Span: ast.NewSpan(start, l.position())}, nil
	}
	return Token{}, &Error{Message: "unexpected character '" + string(c) + "'", Span: ast.NewSpan(start, l.position())}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
