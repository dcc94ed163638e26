// Package parser implements the recursive-descent parser that turns a
// token stream into an *ast.Program, stamping every expression with a
// stable id, unique within that parse, as it is constructed.
package parser

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/token"
)

const maxArgs = 255

// synchronizers are the token kinds the parser resumes at after an error.
var synchronizers = map[token.Kind]bool{
	token.Class:  true,
	token.Fun:    true,
	token.Var:    true,
	token.For:    true,
	token.If:     true,
	token.While:  true,
	token.Print:  true,
	token.Return: true,
}

// Parser is a recursive-descent parser over a fixed token slice.
type Parser struct {
	tokens   []token.Token
	idx      int
	interner *ident.Interner
	reporter errors.Reporter
	ids      ast.IDGen
	loopDepth int
}

// New returns a Parser over tokens, interning identifiers through interner
// and reporting syntax errors through reporter.
func New(tokens []token.Token, interner *ident.Interner, reporter errors.Reporter) *Parser {
	return &Parser{tokens: tokens, interner: interner, reporter: reporter}
}

// parseError is used internally to unwind out of a broken production and
// resynchronize; it carries no data because the error itself was already
// reported.
type parseError struct{}

// Parse runs the full "program -> declaration* EOF" production. Check
// reporter.(*errors.Collector).HasErrors() afterward: if any error was
// reported, the returned *ast.Program must not be passed to the resolver
// or evaluator (spec: "if any error occurred, the final result is a
// parse-failure outcome, not an AST").
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		decl := p.declaration()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
	}
	return prog
}

func (p *Parser) declaration() (result ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				result = nil
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	nameTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect class name.")
	name := p.identifierFrom(nameTok)

	var superclass *ast.Variable
	if p.match(token.Less) {
		superTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect superclass name.")
		superclass = ast.NewVariable(p.ids.Next(), superTok.Position, p.identifierFrom(superTok))
	}

	p.consume(token.LeftBrace, errors.KindUnexpectedToken, "Expect '{' before class body.")

	decl := &ast.ClassDecl{Name: name, Methods: make(map[ident.Symbol]*ast.FunctionDecl), Superclass: superclass}
	for !p.check(token.RightBrace) && !p.atEnd() {
		method := p.function("method").(*ast.FunDeclStmt).Decl
		decl.Methods[method.Name.Symbol] = method
		decl.MethodList = append(decl.MethodList, method)
	}
	p.consume(token.RightBrace, errors.KindUnexpectedToken, "Expect '}' after class body.")

	return &ast.ClassDeclStmt{Decl: decl}
}

func (p *Parser) function(kind string) ast.Stmt {
	nameTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect "+kind+" name.")
	name := p.identifierFrom(nameTok)

	p.consume(token.LeftParen, errors.KindUnexpectedToken, "Expect '(' after "+kind+" name.")
	var params []ast.Identifier
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.reportAt(errors.KindTooManyParameters, "Can't have more than 255 parameters.", p.current().Position)
			}
			pt := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect parameter name.")
			params = append(params, p.identifierFrom(pt))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, errors.KindUnexpectedToken, "Expect ')' after parameters.")

	p.consume(token.LeftBrace, errors.KindUnexpectedToken, "Expect '{' before "+kind+" body.")
	body := p.blockStmts()

	decl := &ast.FunctionDecl{
		Name:          name,
		Params:        params,
		Body:          body,
		IsInitializer: kind == "method" && name.Name == "init",
	}
	return &ast.FunDeclStmt{Decl: decl}
}

func (p *Parser) varDecl() ast.Stmt {
	nameTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect variable name.")
	name := p.identifierFrom(nameTok)

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consumeSemicolon("Expect ';' after variable declaration.")
	return &ast.VarStmt{Name: name, Init: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.Break):
		return p.breakStmt()
	case p.match(token.Continue):
		return p.continueStmt()
	case p.match(token.LeftBrace):
		return &ast.Block{Stmts: p.blockStmts()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) breakStmt() ast.Stmt {
	pos := p.previous().Position
	if p.loopDepth == 0 {
		p.reportAt(errors.KindBreakOutsideLoop, "Can't use 'break' outside of a loop.", pos)
	}
	p.consumeSemicolon("Expect ';' after 'break'.")
	return &ast.BreakStmt{Position: pos}
}

func (p *Parser) continueStmt() ast.Stmt {
	pos := p.previous().Position
	if p.loopDepth == 0 {
		p.reportAt(errors.KindContinueOutsideLoop, "Can't use 'continue' outside of a loop.", pos)
	}
	p.consumeSemicolon("Expect ';' after 'continue'.")
	return &ast.ContinueStmt{Position: pos}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consumeSemicolon("Expect ';' after expression.")
	return &ast.ExprStmt{Expr: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consumeSemicolon("Expect ';' after value.")
	return &ast.PrintStmt{Expr: expr}
}

func (p *Parser) returnStmt() ast.Stmt {
	key := p.previous()
	if p.check(token.Semicolon) {
		p.advance()
		return &ast.ReturnStmt{Position: key.Position}
	}
	expr := p.expression()
	p.consumeSemicolon("Expect ';' after return value.")
	return &ast.ReturnStmt{Expr: expr, Position: key.Position}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, errors.KindUnexpectedToken, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, errors.KindMissingClosingParen, "Expect ')' after if condition.")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, errors.KindUnexpectedToken, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, errors.KindMissingClosingParen, "Expect ')' after condition.")

	p.loopDepth++
	body := p.statement()
	p.loopDepth--

	return &ast.WhileStmt{Cond: cond, Body: body}
}

// forStmt desugars "for (init; cond; inc) body" at parse time into
// { init; while (cond) { body; inc; } }, with cond defaulting to true. The
// resolver/evaluator never see a For node.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, errors.KindUnexpectedToken, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		initializer = nil
	case p.match(token.Var):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, errors.KindMissingSemicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RightParen) {
		increment = p.expression()
	}
	p.consume(token.RightParen, errors.KindMissingClosingParen, "Expect ')' after for clauses.")

	p.loopDepth++
	body := p.statement()
	p.loopDepth--

	if increment != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: increment}}}
	}
	if condition == nil {
		condition = ast.NewLiteral(p.ids.Next(), token.Position{}, ast.LiteralTrue, "")
	}
	var loop ast.Stmt = &ast.WhileStmt{Cond: condition, Body: body}
	if initializer != nil {
		loop = &ast.Block{Stmts: []ast.Stmt{initializer, loop}}
	}
	return loop
}

func (p *Parser) blockStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if decl := p.declaration(); decl != nil {
			stmts = append(stmts, decl)
		}
	}
	p.consume(token.RightBrace, errors.KindMissingClosingParen, "Expect '}' after block.")
	return stmts
}

// ---- expressions ----

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// Only two left-hand-side shapes are legal: a Variable (-> Assign) or a Get
// (-> Set). Assignment is right-associative.
func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.Equal) {
		equalsPos := p.previous().Position
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return ast.NewAssign(p.ids.Next(), expr.Pos(), target.Name, value)
		case *ast.Get:
			return ast.NewSet(p.ids.Next(), expr.Pos(), target.Object, target.Name, value)
		default:
			p.reportAt(errors.KindInvalidAssignmentTarget, "Invalid assignment target.", equalsPos)
			return expr
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.Or) {
		right := p.logicAnd()
		expr = ast.NewLogical(p.ids.Next(), expr.Pos(), expr, ast.LogicalOr, right)
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		right := p.equality()
		expr = ast.NewLogical(p.ids.Next(), expr.Pos(), expr, ast.LogicalAnd, right)
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.check(token.EqualEqual) || p.check(token.BangEqual) {
		opTok := p.advance()
		op := ast.OpEqual
		if opTok.Kind == token.BangEqual {
			op = ast.OpNotEqual
		}
		right := p.comparison()
		expr = ast.NewBinary(p.ids.Next(), expr.Pos(), expr, op, opTok.Position, right)
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.check(token.Less) || p.check(token.LessEqual) || p.check(token.Greater) || p.check(token.GreaterEqual) {
		opTok := p.advance()
		op := binaryOpFor(opTok.Kind)
		right := p.term()
		expr = ast.NewBinary(p.ids.Next(), expr.Pos(), expr, op, opTok.Position, right)
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.check(token.Plus) || p.check(token.Minus) {
		opTok := p.advance()
		op := binaryOpFor(opTok.Kind)
		right := p.factor()
		expr = ast.NewBinary(p.ids.Next(), expr.Pos(), expr, op, opTok.Position, right)
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.check(token.Star) || p.check(token.Slash) {
		opTok := p.advance()
		op := binaryOpFor(opTok.Kind)
		right := p.unary()
		expr = ast.NewBinary(p.ids.Next(), expr.Pos(), expr, op, opTok.Position, right)
	}
	return expr
}

func binaryOpFor(k token.Kind) ast.BinaryOp {
	switch k {
	case token.Plus:
		return ast.OpAdd
	case token.Minus:
		return ast.OpSub
	case token.Star:
		return ast.OpMul
	case token.Slash:
		return ast.OpDiv
	case token.Less:
		return ast.OpLess
	case token.LessEqual:
		return ast.OpLessEqual
	case token.Greater:
		return ast.OpGreater
	case token.GreaterEqual:
		return ast.OpGreaterEqual
	case token.EqualEqual:
		return ast.OpEqual
	case token.BangEqual:
		return ast.OpNotEqual
	}
	panic("parser: unreachable binary operator")
}

func (p *Parser) unary() ast.Expr {
	if p.check(token.Bang) || p.check(token.Minus) {
		opTok := p.advance()
		op := ast.OpNot
		if opTok.Kind == token.Minus {
			op = ast.OpNegate
		}
		right := p.unary()
		return ast.NewUnary(p.ids.Next(), opTok.Position, op, right)
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			nameTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect property name after '.'.")
			expr = ast.NewGet(p.ids.Next(), expr.Pos(), expr, p.identifierFrom(nameTok))
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.reportAt(errors.KindTooManyArguments, "Can't have more than 255 arguments.", p.current().Position)
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, errors.KindMissingClosingParen, "Expect ')' after arguments.")
	return ast.NewCall(p.ids.Next(), callee.Pos(), callee, args, paren.Position)
}

func (p *Parser) primary() ast.Expr {
	tok := p.current()

	switch {
	case p.match(token.True):
		return ast.NewLiteral(p.ids.Next(), tok.Position, ast.LiteralTrue, "")
	case p.match(token.False):
		return ast.NewLiteral(p.ids.Next(), tok.Position, ast.LiteralFalse, "")
	case p.match(token.Nil):
		return ast.NewLiteral(p.ids.Next(), tok.Position, ast.LiteralNil, "")
	case p.match(token.Number):
		return ast.NewLiteral(p.ids.Next(), tok.Position, ast.LiteralNumber, tok.Lexeme)
	case p.match(token.String):
		return ast.NewLiteral(p.ids.Next(), tok.Position, ast.LiteralString, tok.Lexeme)
	case p.match(token.This):
		return ast.NewThis(p.ids.Next(), tok.Position)
	case p.match(token.Super):
		p.consume(token.Dot, errors.KindUnexpectedToken, "Expect '.' after 'super'.")
		methodTok := p.consume(token.Identifier, errors.KindUnexpectedToken, "Expect superclass method name.")
		return ast.NewSuper(p.ids.Next(), tok.Position, p.identifierFrom(methodTok))
	case p.match(token.LeftParen):
		inner := p.expression()
		p.consume(token.RightParen, errors.KindMissingClosingParen, "Expect ')' after expression.")
		return ast.NewGrouping(p.ids.Next(), tok.Position, inner)
	case p.match(token.Identifier):
		return ast.NewVariable(p.ids.Next(), tok.Position, p.identifierFrom(tok))
	default:
		p.reportAt(errors.KindExpectedExpression, "Expect expression.", tok.Position)
		panic(parseError{})
	}
}

func (p *Parser) identifierFrom(tok token.Token) ast.Identifier {
	return ast.Identifier{Symbol: p.interner.Intern(tok.Lexeme), Name: tok.Lexeme, Position: tok.Position}
}

// ---- token-stream helpers ----

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(k token.Kind) bool {
	return !p.atEnd() && p.current().Kind == k
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.current().Kind == token.EOF
}

func (p *Parser) current() token.Token {
	return p.tokens[p.idx]
}

func (p *Parser) previous() token.Token {
	if p.idx > 0 {
		return p.tokens[p.idx-1]
	}
	return p.current()
}

func (p *Parser) consume(k token.Kind, kind errors.Kind, msg string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	tok := p.current()
	if tok.Kind == token.EOF {
		p.reportAt(errors.KindUnexpectedEndOfFile, msg, tok.Position)
	} else {
		p.reportAt(kind, msg, tok.Position)
	}
	panic(parseError{})
}

func (p *Parser) consumeSemicolon(msg string) {
	if p.check(token.Semicolon) {
		p.advance()
		return
	}
	p.reportAt(errors.KindMissingSemicolon, msg, p.current().Position)
	panic(parseError{})
}

func (p *Parser) reportAt(kind errors.Kind, msg string, pos token.Position) {
	p.reporter.Report(errors.New(kind, msg, pos))
}

// synchronize discards tokens until it sees a ';' (consumed) or the start
// of a new statement, so parsing can continue after an error and report
// more than one per pass.
func (p *Parser) synchronize() {
	if !p.atEnd() {
		p.advance()
	}
	for !p.atEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		if synchronizers[p.current().Kind] {
			return
		}
		p.advance()
	}
}
