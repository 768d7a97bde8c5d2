// Package parser implements the recursive-descent parser described in the
// language's grammar: a precedence ladder for expressions and a
// straightforward statement/declaration grammar, with exactly one point
// of lookahead-only disambiguation (top-level function vs. global, see
// parseTopLevel) and no backtracking.
//
// Every production returns as soon as it hits a token that doesn't match
// what it expected; there is no panic/recover error-recovery scheme here
// because the language has none (the first error aborts compilation).
package parser

import (
	"github.com/skx/subc/ast"
	"github.com/skx/subc/errors"
	"github.com/skx/subc/lexer"
	"github.com/skx/subc/token"
)

// maxCallArgs is the largest argument count any Call may carry: spec caps
// this at 8 for ARM64, the more permissive of the two back-ends.
const maxCallArgs = 8

// maxParams is the largest parameter count any Function may declare.
const maxParams = 6

// Parser holds parse-time state: the lexer supplying tokens one at a
// time, nothing more. There is no error list (see package doc): the
// first error returned by any production aborts the whole parse.
type Parser struct {
	l *lexer.Lexer
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse parses an entire source file into a *ast.Program.
func Parse(input string) (*ast.Program, error) {
	return New(lexer.New(input)).ParseProgram()
}

func (p *Parser) cur() token.Token {
	return p.l.Current()
}

// expect checks that the current token has type tt, consumes it, and
// returns it; otherwise it returns a *errors.CompileError describing the
// mismatch.
func (p *Parser) expect(tt token.Type) (token.Token, error) {
	tok := p.cur()
	if tok.Type == token.ERROR {
		return tok, errors.New(tok.Pos, "%s", tok.Literal)
	}
	if tok.Type != tt {
		return tok, errors.New(tok.Pos, "expected %s, found %s", tt, tok.Type)
	}
	p.l.Advance()
	return tok, nil
}

// ParseProgram parses the global declarations and function definitions
// that make up a source file.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.cur().Type != token.EOF {
		node, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		switch n := node.(type) {
		case *ast.Function:
			prog.Functions = append(prog.Functions, n)
		case *ast.VarDecl:
			prog.Globals = append(prog.Globals, n)
		}
	}

	return prog, nil
}

// parseTopLevel implements spec §4.2's top-level disambiguation: consume
// a type token and an identifier, then look at exactly one more token.
// `(` means a function definition; anything else means a global variable
// declaration. No backtracking through the lexer is required.
func (p *Parser) parseTopLevel() (ast.Node, error) {
	tok := p.cur()

	var returns ast.ReturnKind
	switch tok.Type {
	case token.INT:
		returns = ast.ReturnsInt
	case token.VOID:
		returns = ast.ReturnsVoid
	default:
		return nil, errors.New(tok.Pos, "expected 'int' or 'void' at top level, found %s", tok.Type)
	}
	p.l.Advance()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if p.cur().Type == token.LPAREN {
		return p.parseFunction(name, returns)
	}

	if returns == ast.ReturnsVoid {
		return nil, errors.New(name.Pos, "global variable %q cannot be declared void", name.Literal)
	}
	return p.parseGlobalVarDecl(name)
}

// parseFunction parses the parameter list and body of a function whose
// name and return kind have already been consumed, and `(` is current.
func (p *Parser) parseFunction(name token.Token, returns ast.ReturnKind) (*ast.Function, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []string
	if p.cur().Type != token.RPAREN {
		for {
			if _, err := p.expect(token.INT); err != nil {
				return nil, err
			}
			pname, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, pname.Literal)

			if p.cur().Type == token.COMMA {
				p.l.Advance()
				continue
			}
			break
		}
	}
	if len(params) > maxParams {
		return nil, errors.New(name.Pos, "function %q has too many parameters (max %d)", name.Literal, maxParams)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: name.Literal, Returns: returns, Params: params, Body: body, Pos: name.Pos}, nil
}

// parseGlobalVarDecl parses a global scalar or array declaration whose
// `int` and name have already been consumed.
//
// Per spec §4.2: a scalar global's initializer must be a single integer
// literal; an array global is always zero-initialized and may not carry
// an initializer list.
func (p *Parser) parseGlobalVarDecl(name token.Token) (*ast.VarDecl, error) {
	decl := &ast.VarDecl{Name: name.Literal, Pos: name.Pos}

	if p.cur().Type == token.LBRACKET {
		p.l.Advance()
		size, err := p.expect(token.NUMBER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		decl.IsArray = true
		decl.Size = size.IntValue
	} else if p.cur().Type == token.ASSIGN {
		p.l.Advance()
		lit, err := p.expect(token.NUMBER)
		if err != nil {
			return nil, errors.New(lit.Pos, "global initializer must be a single integer literal")
		}
		decl.Init = &ast.NumLiteral{Value: lit.IntValue, Pos: lit.Pos}
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return decl, nil
}

// --- statements -------------------------------------------------------

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().Type {
	case token.INT:
		return p.parseLocalVarDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLocalVarDecl() (ast.Stmt, error) {
	tok := p.cur()
	p.l.Advance() // consume 'int'

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	decl := &ast.VarDecl{Name: name.Literal, Pos: tok.Pos}

	if p.cur().Type == token.LBRACKET {
		p.l.Advance()
		size, err := p.expect(token.NUMBER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		decl.IsArray = true
		decl.Size = size.IntValue
	} else if p.cur().Type == token.ASSIGN {
		p.l.Advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.cur()
	p.l.Advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.If{Cond: cond, Then: then, Pos: tok.Pos}

	// Dangling-else binds to the nearest preceding `if`: because we
	// immediately check for `else` right after parsing `then`, a chain
	// of nested `if`s without braces naturally associates this way -
	// there is no ambiguity to resolve explicitly.
	if p.cur().Type == token.ELSE {
		p.l.Advance()
		els, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		ifStmt.Else = els
	}

	return ifStmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	tok := p.cur()
	p.l.Advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &ast.While{Cond: cond, Body: body, Pos: tok.Pos}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	tok := p.cur()
	p.l.Advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if p.cur().Type != token.SEMI {
		var err error
		init, err = p.parseForClause()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if p.cur().Type != token.SEMI {
		var err error
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var update ast.Stmt
	if p.cur().Type != token.RPAREN {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		update = &ast.ExprStmt{X: e, Pos: exprPos(e)}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &ast.For{Init: init, Cond: cond, Update: update, Body: body, Pos: tok.Pos}, nil
}

// parseForClause parses the `for` loop's init clause: either
// `int name [= expr]` or a bare expression.
func (p *Parser) parseForClause() (ast.Stmt, error) {
	if p.cur().Type == token.INT {
		tok := p.cur()
		p.l.Advance()

		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		decl := &ast.VarDecl{Name: name.Literal, Pos: tok.Pos}

		if p.cur().Type == token.ASSIGN {
			p.l.Advance()
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			decl.Init = init
		}
		return decl, nil
	}

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: e, Pos: exprPos(e)}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.cur()
	p.l.Advance()

	var val ast.Expr
	if p.cur().Type != token.SEMI {
		var err error
		val, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Return{Value: val, Pos: tok.Pos}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	tok := p.cur()
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	block := &ast.Block{Pos: tok.Pos}
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, errors.New(p.cur().Pos, "unexpected end of input, expected %s", token.RBRACE)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseExprStatement() (ast.Stmt, error) {
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: e, Pos: exprPos(e)}, nil
}

// --- expressions: assignment -> logical-or -> logical-and -> equality ->
// relational -> additive -> multiplicative -> unary -> primary ---------

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	var op ast.AssignOp
	switch p.cur().Type {
	case token.ASSIGN:
		op = ast.AssignPlain
	case token.PLUSEQ:
		op = ast.AssignAdd
	case token.MINUSEQ:
		op = ast.AssignSub
	default:
		return left, nil
	}

	pos := p.cur().Pos
	if !isAssignable(left) {
		return nil, errors.New(pos, "assignment target must be a variable or array element")
	}
	p.l.Advance()

	// Right-associative: the value is itself a full assignment.
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	return &ast.Assign{Target: left, Value: value, Op: op, Pos: pos}, nil
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Variable, *ast.ArrayAccess:
		return true
	default:
		return false
	}
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.OROR {
		pos := p.cur().Pos
		p.l.Advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.BinOr, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.ANDAND {
		pos := p.cur().Pos
		p.l.Advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.BinAnd, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.EQ || p.cur().Type == token.NOTEQ {
		tok := p.cur()
		p.l.Advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		op := ast.BinEQ
		if tok.Type == token.NOTEQ {
			op = ast.BinNEQ
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: tok.Pos}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		var op ast.BinOp
		switch tok.Type {
		case token.LT:
			op = ast.BinLT
		case token.LTE:
			op = ast.BinLTE
		case token.GT:
			op = ast.BinGT
		case token.GTE:
			op = ast.BinGTE
		default:
			return left, nil
		}
		p.l.Advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: tok.Pos}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.PLUS || p.cur().Type == token.MINUS {
		tok := p.cur()
		p.l.Advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := ast.BinAdd
		if tok.Type == token.MINUS {
			op = ast.BinSub
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: tok.Pos}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		var op ast.BinOp
		switch tok.Type {
		case token.ASTERISK:
			op = ast.BinMul
		case token.SLASH:
			op = ast.BinDiv
		case token.PERCENT:
			op = ast.BinMod
		default:
			return left, nil
		}
		p.l.Advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: tok.Pos}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.cur()

	switch tok.Type {
	case token.MINUS:
		p.l.Advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.UnNeg, Operand: operand, Pos: tok.Pos}, nil

	case token.NOT:
		p.l.Advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.UnNot, Operand: operand, Pos: tok.Pos}, nil

	case token.PLUSPLUS, token.MINUSMIN:
		p.l.Advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !isAssignable(operand) {
			return nil, errors.New(tok.Pos, "operand of '%s' must be a variable or array element", tok.Type)
		}
		op := ast.AssignAdd
		if tok.Type == token.MINUSMIN {
			op = ast.AssignSub
		}
		one := &ast.NumLiteral{Value: 1, Pos: tok.Pos}
		return &ast.Assign{Target: operand, Value: one, Op: op, Pos: tok.Pos}, nil

	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()

	switch tok.Type {
	case token.NUMBER:
		p.l.Advance()
		return &ast.NumLiteral{Value: tok.IntValue, Pos: tok.Pos}, nil

	case token.STRING:
		p.l.Advance()
		return &ast.StringLiteral{Value: tok.Literal, Pos: tok.Pos}, nil

	case token.LPAREN:
		p.l.Advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case token.AND:
		p.l.Advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, errors.New(tok.Pos, "expected identifier after '&'")
		}
		return &ast.AddressOf{Name: name.Literal, Pos: tok.Pos}, nil

	case token.IDENT:
		p.l.Advance()
		switch p.cur().Type {
		case token.LPAREN:
			p.l.Advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			if len(args) > maxCallArgs {
				return nil, errors.New(tok.Pos, "call to %q has too many arguments (max %d)", tok.Literal, maxCallArgs)
			}
			return &ast.Call{Name: tok.Literal, Args: args, Pos: tok.Pos}, nil

		case token.LBRACKET:
			p.l.Advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			return &ast.ArrayAccess{Name: tok.Literal, Index: idx, Pos: tok.Pos}, nil

		default:
			return &ast.Variable{Name: tok.Literal, Pos: tok.Pos}, nil
		}

	default:
		return nil, errors.New(tok.Pos, "unexpected token %s in expression", tok.Type)
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.cur().Type == token.RPAREN {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Type == token.COMMA {
			p.l.Advance()
			continue
		}
		break
	}
	return args, nil
}

// exprPos extracts the position carried by an expression node, used to tag
// the ExprStmt wrapper around an expression-statement.
func exprPos(e ast.Expr) token.Pos {
	switch v := e.(type) {
	case *ast.NumLiteral:
		return v.Pos
	case *ast.StringLiteral:
		return v.Pos
	case *ast.Variable:
		return v.Pos
	case *ast.Binary:
		return v.Pos
	case *ast.Unary:
		return v.Pos
	case *ast.Assign:
		return v.Pos
	case *ast.Call:
		return v.Pos
	case *ast.ArrayAccess:
		return v.Pos
	case *ast.AddressOf:
		return v.Pos
	default:
		return token.Pos{}
	}
}
