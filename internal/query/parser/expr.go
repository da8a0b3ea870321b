package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ali01/graphd/internal/core/value"
	"github.com/ali01/graphd/internal/query/ast"
)

// ExprParser parses expressions via precedence climbing over the token
// stream, one token of lookahead. Purely syntactic: it builds
// ast.Expression nodes and never resolves a name against a catalog or
// symbol table — that is the validator's job (SPEC_FULL 4.1/4.2).
type ExprParser struct {
	lex  *Lexer
	tok  Token
	peek *Token
}

func NewExprParser(src string) (*ExprParser, error) {
	p := &ExprParser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ExprParser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *ExprParser) peekTok() (Token, error) {
	if p.peek == nil {
		t, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.peek = &t
	}
	return *p.peek, nil
}

func (p *ExprParser) errorf(span ast.Span, format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Span: span}
}

// ParseExpression parses a complete expression from p's remaining input
// and requires EOF immediately after, so stray trailing tokens surface
// as a ParseError rather than being silently dropped.
func (p *ExprParser) ParseExpression() (ast.Expression, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, p.errorf(p.tok.Span, "unexpected token %q after expression", p.tok.Text)
	}
	return expr, nil
}

// Precedence climbing, lowest to highest: OR/XOR, AND,
// comparison (= != < <= > >= IN CONTAINS STARTS WITH ENDS WITH), additive
// (+ -), multiplicative (* / %), unary (- + NOT IS NULL/IS NOT NULL),
// postfix (. [ ] ( )).

func (p *ExprParser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokKeyword && (isKw(p.tok, "or") || isKw(p.tok, "xor")) {
		op := ast.OpOr
		if isKw(p.tok, "xor") {
			op = ast.OpXor
		}
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Merge(span).Merge(right.Span()), op, left, right)
	}
	return left, nil
}

func (p *ExprParser) parseAnd() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for isKw(p.tok, "and") {
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Merge(span).Merge(right.Span()), ast.OpAnd, left, right)
	}
	return left, nil
}

func (p *ExprParser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, matched, err := p.matchComparisonOp()
		if err != nil {
			return nil, err
		}
		if !matched {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Merge(right.Span()), op, left, right)
	}
}

func (p *ExprParser) matchComparisonOp() (ast.BinaryOp, bool, error) {
	if p.tok.Kind == TokOp {
		var op ast.BinaryOp
		switch p.tok.Text {
		case "=", "==":
			op = ast.OpEqual
		case "!=", "<>":
			op = ast.OpNotEqual
		case "<":
			op = ast.OpLess
		case "<=":
			op = ast.OpLessEqual
		case ">":
			op = ast.OpGreater
		case ">=":
			op = ast.OpGreaterEqual
		default:
			return 0, false, nil
		}
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		return op, true, nil
	}
	if isKw(p.tok, "in") {
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		return ast.OpIn, true, nil
	}
	if isKw(p.tok, "contains") {
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		return ast.OpContains, true, nil
	}
	if isKw(p.tok, "starts") {
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		if !isKw(p.tok, "with") {
			return 0, false, p.errorf(p.tok.Span, "expected WITH after STARTS")
		}
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		return ast.OpStartsWith, true, nil
	}
	if isKw(p.tok, "ends") {
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		if !isKw(p.tok, "with") {
			return 0, false, p.errorf(p.tok.Span, "expected WITH after ENDS")
		}
		if err := p.advance(); err != nil {
			return 0, false, err
		}
		return ast.OpEndsWith, true, nil
	}
	return 0, false, nil
}

func (p *ExprParser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokOp && (p.tok.Text == "+" || p.tok.Text == "-") {
		op := ast.OpAdd
		if p.tok.Text == "-" {
			op = ast.OpSubtract
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Merge(right.Span()), op, left, right)
	}
	return left, nil
}

func (p *ExprParser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokOp && (p.tok.Text == "*" || p.tok.Text == "/" || p.tok.Text == "%") {
		var op ast.BinaryOp
		switch p.tok.Text {
		case "*":
			op = ast.OpMultiply
		case "/":
			op = ast.OpDivide
		case "%":
			op = ast.OpModulo
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Merge(right.Span()), op, left, right)
	}
	return left, nil
}

func (p *ExprParser) parseUnary() (ast.Expression, error) {
	if p.tok.Kind == TokOp && p.tok.Text == "-" {
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(span.Merge(operand.Span()), ast.OpNeg, operand), nil
	}
	if p.tok.Kind == TokOp && p.tok.Text == "+" {
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(span.Merge(operand.Span()), ast.OpPos, operand), nil
	}
	if isKw(p.tok, "not") {
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(span.Merge(operand.Span()), ast.OpNot, operand), nil
	}
	return p.parsePostfixIsNull()
}

func (p *ExprParser) parsePostfixIsNull() (ast.Expression, error) {
	expr, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for isKw(p.tok, "is") {
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		op := ast.OpIsNull
		if isKw(p.tok, "not") {
			op = ast.OpIsNotNull
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if !isKw(p.tok, "null") {
			return nil, p.errorf(p.tok.Span, "expected NULL after IS [NOT]")
		}
		end := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr = ast.NewUnary(expr.Span().Merge(span).Merge(end), op, expr)
	}
	return expr, nil
}

func (p *ExprParser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case TokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.Kind != TokIdent && p.tok.Kind != TokKeyword {
				return nil, p.errorf(p.tok.Span, "expected property name after '.'")
			}
			field := p.tok.Text
			span := expr.Span().Merge(p.tok.Span)
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr = ast.NewProperty(span, expr, field)
		case TokLBracket:
			start := p.tok.Span
			if err := p.advance(); err != nil {
				return nil, err
			}
			index, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if p.tok.Kind != TokRBracket {
				return nil, p.errorf(p.tok.Span, "expected ']'")
			}
			span := expr.Span().Merge(start).Merge(p.tok.Span)
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr = ast.NewSubscript(span, expr, index)
		default:
			return expr, nil
		}
	}
}

func (p *ExprParser) parsePrimary() (ast.Expression, error) {
	switch p.tok.Kind {
	case TokInt:
		n, err := strconv.ParseInt(p.tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(p.tok.Span, "invalid integer literal %q", p.tok.Text)
		}
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(span, value.Int(n)), nil
	case TokFloat:
		f, err := strconv.ParseFloat(p.tok.Text, 64)
		if err != nil {
			return nil, p.errorf(p.tok.Span, "invalid float literal %q", p.tok.Text)
		}
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(span, value.Float(f)), nil
	case TokString:
		span := p.tok.Span
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(span, value.String(text)), nil
	case TokParamRef:
		span := p.tok.Span
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewVariable(span, name), nil
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TokRParen {
			return nil, p.errorf(p.tok.Span, "expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBracket:
		return p.parseList()
	case TokLBrace:
		return p.parseMap()
	case TokKeyword:
		switch strings.ToLower(p.tok.Text) {
		case "true":
			span := p.tok.Span
			if err := p.advance(); err != nil {
				return nil, err
			}
			return ast.NewLiteral(span, value.Bool(true)), nil
		case "false":
			span := p.tok.Span
			if err := p.advance(); err != nil {
				return nil, err
			}
			return ast.NewLiteral(span, value.Bool(false)), nil
		case "null":
			span := p.tok.Span
			if err := p.advance(); err != nil {
				return nil, err
			}
			return ast.NewLiteral(span, value.Null()), nil
		case "case":
			return p.parseCase()
		case "count", "sum", "avg", "min", "max", "collect":
			return p.parseAggregate()
		}
		return nil, p.errorf(p.tok.Span, "unexpected keyword %q in expression", p.tok.Text)
	case TokIdent:
		name := p.tok.Text
		span := p.tok.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokLParen {
			return p.parseFunctionCall(name, span)
		}
		return ast.NewVariable(span, name), nil
	default:
		return nil, p.errorf(p.tok.Span, "unexpected token %q", p.tok.Text)
	}
}

func (p *ExprParser) parseFunctionCall(name string, start ast.Span) (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []ast.Expression
	for p.tok.Kind != TokRParen {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.Kind != TokRParen {
		return nil, p.errorf(p.tok.Span, "expected ')' to close call to %q", name)
	}
	span := start.Merge(p.tok.Span)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ast.NewFunction(span, name, args), nil
}

func (p *ExprParser) parseAggregate() (ast.Expression, error) {
	start := p.tok.Span
	kindName := strings.ToLower(p.tok.Text)
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != TokLParen {
		return nil, p.errorf(p.tok.Span, "expected '(' after aggregate function %q", kindName)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	distinct := false
	if isKw(p.tok, "distinct") {
		distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var arg ast.Expression
	if p.tok.Kind == TokOp && p.tok.Text == "*" {
		arg = ast.NewLiteral(p.tok.Span, value.Int(1))
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		var err error
		arg, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != TokRParen {
		return nil, p.errorf(p.tok.Span, "expected ')' to close aggregate call")
	}
	span := start.Merge(p.tok.Span)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ast.NewAggregate(span, aggregateKind(kindName), arg, distinct), nil
}

func aggregateKind(name string) ast.AggregateKind {
	switch name {
	case "sum":
		return ast.AggSum
	case "avg":
		return ast.AggAvg
	case "min":
		return ast.AggMin
	case "max":
		return ast.AggMax
	case "collect":
		return ast.AggCollect
	default:
		return ast.AggCount
	}
}

func (p *ExprParser) parseList() (ast.Expression, error) {
	start := p.tok.Span
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Expression
	for p.tok.Kind != TokRBracket {
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.Kind != TokRBracket {
		return nil, p.errorf(p.tok.Span, "expected ']' to close list literal")
	}
	span := start.Merge(p.tok.Span)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ast.NewList(span, items), nil
}

func (p *ExprParser) parseMap() (ast.Expression, error) {
	start := p.tok.Span
	if err := p.advance(); err != nil {
		return nil, err
	}
	var pairs []ast.MapPair
	for p.tok.Kind != TokRBrace {
		if p.tok.Kind != TokIdent && p.tok.Kind != TokKeyword && p.tok.Kind != TokString {
			return nil, p.errorf(p.tok.Span, "expected map key")
		}
		key := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind != TokColon {
			return nil, p.errorf(p.tok.Span, "expected ':' after map key %q", key)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.MapPair{Key: key, Value: val})
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.Kind != TokRBrace {
		return nil, p.errorf(p.tok.Span, "expected '}' to close map literal")
	}
	span := start.Merge(p.tok.Span)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ast.NewMap(span, pairs), nil
}

func (p *ExprParser) parseCase() (ast.Expression, error) {
	start := p.tok.Span
	if err := p.advance(); err != nil {
		return nil, err
	}
	var test ast.Expression
	if !isKw(p.tok, "when") {
		var err error
		test, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}
	var conditions []ast.CaseCondition
	for isKw(p.tok, "when") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		when, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !isKw(p.tok, "then") {
			return nil, p.errorf(p.tok.Span, "expected THEN after WHEN clause")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		then, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, ast.CaseCondition{When: when, Then: then})
	}
	var def ast.Expression
	if isKw(p.tok, "else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var err error
		def, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}
	if !isKw(p.tok, "end") {
		return nil, p.errorf(p.tok.Span, "expected END to close CASE expression")
	}
	span := start.Merge(p.tok.Span)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return ast.NewCase(span, test, conditions, def), nil
}

func isKw(t Token, word string) bool {
	return t.Kind == TokKeyword && strings.EqualFold(t.Text, word)
}
