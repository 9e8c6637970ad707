package kaleido

// PrecedenceTable maps a binary operator character to its precedence.
// Characters that are missing or map to a non-positive value are not
// binary operators.
type PrecedenceTable map[rune]int

func DefaultPrecedence() PrecedenceTable {
	return PrecedenceTable{
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
	}
}

func (t PrecedenceTable) Copy() PrecedenceTable {
	t2 := make(PrecedenceTable, len(t))
	for k, v := range t {
		t2[k] = v
	}

	return t2
}

type Parser struct {
	filename   string
	tokenizer  Tokenizer
	precedence PrecedenceTable

	cur     Token
	started bool
}

// NewParser takes a copy of precedence, so later changes to the table do not
// affect the parser. A nil table selects DefaultPrecedence.
func NewParser(tokenizer Tokenizer, precedence PrecedenceTable) *Parser {
	if precedence == nil {
		precedence = DefaultPrecedence()
	}

	return &Parser{
		filename:   tokenizer.GetFilename(),
		tokenizer:  tokenizer,
		precedence: precedence.Copy(),
	}
}

func (p *Parser) GetFilename() string {
	return p.filename
}

// Current returns the token the parser is looking at, reading the first one
// on demand.
func (p *Parser) Current() Token {
	if !p.started {
		p.Advance()
	}

	return p.cur
}

// Advance moves the cursor to the next token and returns it.
func (p *Parser) Advance() Token {
	p.started = true
	p.cur = p.tokenizer.Get()

	return p.cur
}

func (p *Parser) errorf(err error) error {
	return &ParseError{
		Loc: p.cur.Loc,
		Tok: p.cur,
		Err: err,
	}
}

func (p *Parser) tokPrecedence(tok Token) int {
	if tok.Typ != TokenChar {
		return -1
	}

	prec, ok := p.precedence[tok.Char()]
	if !ok || prec <= 0 {
		return -1
	}

	return prec
}

// ParseExpression parses a primary expression followed by any number of
// binary operators and their right hand sides.
func (p *Parser) ParseExpression() (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS folds operators of precedence minPrec or higher into lhs.
// An operator binding tighter than the one before it takes the pending right
// hand side as its own left operand.
func (p *Parser) parseBinOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		tokPrec := p.tokPrecedence(p.Current())
		if tokPrec < minPrec {
			return lhs, nil
		}

		op := p.cur.Char()
		p.Advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if nextPrec := p.tokPrecedence(p.cur); tokPrec < nextPrec {
			rhs, err = p.parseBinOpRHS(tokPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{
			Op:  op,
			LHS: lhs,
			RHS: rhs,
		}
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch tok := p.Current(); {
	case tok.Typ == TokenIdentifier:
		return p.parseIdentifierExpr()
	case tok.Typ == TokenNumber:
		return p.parseNumberExpr(), nil
	case tok.is('('):
		return p.parseParenExpr()
	default:
		return nil, p.errorf(ErrUnknownToken)
	}
}

func (p *Parser) parseNumberExpr() Expr {
	expr := &NumberExpr{Value: p.cur.Num}
	p.Advance()

	return expr
}

func (p *Parser) parseParenExpr() (Expr, error) {
	p.Advance() // Skip (

	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if !p.cur.is(')') {
		return nil, p.errorf(ErrExpectedCloseParen)
	}
	p.Advance()

	return expr, nil
}

func (p *Parser) parseIdentifierExpr() (Expr, error) {
	name := p.cur.Value
	p.Advance()

	if !p.cur.is('(') {
		return &VariableExpr{Name: name}, nil
	}
	p.Advance() // Skip (

	var args []Expr
	if !p.cur.is(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur.is(')') {
				break
			}

			if !p.cur.is(',') {
				return nil, p.errorf(ErrExpectedArgListDelim)
			}
			p.Advance()

			// Trailing separators are not allowed: f(1,)
			if p.cur.is(')') {
				return nil, p.errorf(ErrExpectedArgListDelim)
			}
		}
	}
	p.Advance() // Skip )

	return &CallExpr{
		Callee: name,
		Args:   args,
	}, nil
}

// ParsePrototype parses `name(param param ...)`. Parameters are separated by
// whitespace only.
func (p *Parser) ParsePrototype() (*Prototype, error) {
	if p.Current().Typ != TokenIdentifier {
		return nil, p.errorf(ErrExpectedFuncName)
	}

	name := p.cur.Value
	p.Advance()

	if !p.cur.is('(') {
		return nil, p.errorf(ErrExpectedOpenParen)
	}

	var params []string
	for p.Advance().Typ == TokenIdentifier {
		params = append(params, p.cur.Value)
	}

	if !p.cur.is(')') {
		return nil, p.errorf(ErrExpectedProtoClose)
	}
	p.Advance()

	return &Prototype{
		Name:   name,
		Params: params,
	}, nil
}

// ParseDefinition parses `def prototype expression`.
func (p *Parser) ParseDefinition() (*Function, error) {
	p.Advance() // Skip def

	proto, err := p.ParsePrototype()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &Function{
		Proto: proto,
		Body:  body,
	}, nil
}

// ParseExtern parses `extern prototype`.
func (p *Parser) ParseExtern() (*Prototype, error) {
	p.Advance() // Skip extern

	return p.ParsePrototype()
}

// ParseTopLevelExpr wraps a bare expression in an anonymous function.
func (p *Parser) ParseTopLevelExpr() (*Function, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &Function{
		Proto: &Prototype{},
		Body:  body,
	}, nil
}
