package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandType represents the addressing of an operand.
type OperandType uint8

const (
	OperandImmediate OperandType = iota // n
	OperandPosition                     // [n]
	OperandRelative                     // [rb+n]
)

// Operand represents an instruction operand. Label is set when the value
// refers to a label and is resolved by the compiler.
type Operand struct {
	Type  OperandType
	Value int64
	Label string
}

// AsmInstruction represents a parsed assembly instruction or DATA directive.
type AsmInstruction struct {
	Opcode   string
	Operands []Operand
	Line     int

	// Address is the NNNN: marker that preceded the line, if any.
	Address    int64
	HasAddress bool
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Instructions []AsmInstruction
	Labels       map[string]int // label -> instruction index
}

// Parser parses IntCode assembly source code.
type Parser struct {
	tokens  []Token
	pos     int
	program *AsmProgram
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	tokens := lexer.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		program: &AsmProgram{
			Instructions: []AsmInstruction{},
			Labels:       make(map[string]int),
		},
	}
}

// Parse parses the entire input and returns the program.
func (p *Parser) Parse() (*AsmProgram, error) {
	var marker *Token

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			return p.program, nil

		case TokenNewline:
			marker = nil
			p.pos++

		case TokenInt:
			if p.peek(1).Type != TokenColon || marker != nil {
				return nil, fmt.Errorf("line %d: unexpected integer: %s", tok.Line, tok.Value)
			}
			marker = &p.tokens[p.pos]
			p.pos += 2

		case TokenIdent:
			if p.peek(1).Type == TokenColon {
				if err := p.defineLabel(tok); err != nil {
					return nil, err
				}
				p.pos += 2
				continue
			}

			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			if marker != nil {
				addr, err := strconv.ParseInt(marker.Value, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid address: %s", marker.Line, marker.Value)
				}
				inst.Address = addr
				inst.HasAddress = true
				marker = nil
			}
			p.program.Instructions = append(p.program.Instructions, inst)

		default:
			return nil, fmt.Errorf("line %d: unexpected token: %s", tok.Line, tok.Value)
		}
	}

	return p.program, nil
}

func (p *Parser) peek(offset int) Token {
	if p.pos+offset < len(p.tokens) {
		return p.tokens[p.pos+offset]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) defineLabel(tok Token) error {
	if isRelativeBase(tok.Value) {
		return fmt.Errorf("line %d: %s is reserved", tok.Line, tok.Value)
	}
	if _, exists := p.program.Labels[tok.Value]; exists {
		return fmt.Errorf("line %d: %w: %s", tok.Line, ErrDuplicateLabel, tok.Value)
	}
	p.program.Labels[tok.Value] = len(p.program.Instructions)
	return nil
}

func (p *Parser) parseInstruction() (AsmInstruction, error) {
	inst := AsmInstruction{
		Opcode:   p.tokens[p.pos].Value,
		Line:     p.tokens[p.pos].Line,
		Operands: []Operand{},
	}
	p.pos++ // Consume opcode

	// Parse operands until newline or EOF
	expectOperand := true
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == TokenNewline || tok.Type == TokenEOF {
			break
		}

		if tok.Type == TokenComma {
			if expectOperand {
				return inst, fmt.Errorf("line %d: unexpected comma", tok.Line)
			}
			expectOperand = true
			p.pos++
			continue
		}

		if !expectOperand {
			return inst, fmt.Errorf("line %d: expected comma before %s", tok.Line, tok.Value)
		}

		operand, err := p.parseOperand()
		if err != nil {
			return inst, err
		}
		inst.Operands = append(inst.Operands, operand)
		expectOperand = false
	}

	if expectOperand && len(inst.Operands) > 0 {
		return inst, fmt.Errorf("line %d: trailing comma", inst.Line)
	}

	return inst, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenInt:
		v, err := parseInt(tok)
		if err != nil {
			return Operand{}, err
		}
		p.pos++
		return Operand{Type: OperandImmediate, Value: v}, nil

	case TokenIdent:
		if isRelativeBase(tok.Value) {
			return Operand{}, fmt.Errorf("line %d: rb must be bracketed", tok.Line)
		}
		p.pos++
		return Operand{Type: OperandImmediate, Label: tok.Value}, nil

	case TokenLBracket:
		p.pos++
		return p.parseBracketed(tok.Line)

	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token: %s", tok.Line, tok.Value)
	}
}

// parseBracketed parses the remainder of [n], [label], [rb], [rb+n] or [rb-n].
func (p *Parser) parseBracketed(line int) (Operand, error) {
	var op Operand
	tok := p.peek(0)

	switch {
	case tok.Type == TokenInt:
		v, err := parseInt(tok)
		if err != nil {
			return Operand{}, err
		}
		op = Operand{Type: OperandPosition, Value: v}
		p.pos++

	case tok.Type == TokenIdent && isRelativeBase(tok.Value):
		op = Operand{Type: OperandRelative}
		p.pos++

		next := p.peek(0)
		switch next.Type {
		case TokenPlus:
			p.pos++
			num := p.peek(0)
			if num.Type != TokenInt {
				return Operand{}, fmt.Errorf("line %d: expected offset after rb+", line)
			}
			v, err := parseInt(num)
			if err != nil {
				return Operand{}, err
			}
			op.Value = v
			p.pos++
		case TokenInt:
			// The lexer folds the minus sign into the literal.
			if !strings.HasPrefix(next.Value, "-") {
				return Operand{}, fmt.Errorf("line %d: expected + or - after rb", line)
			}
			v, err := parseInt(next)
			if err != nil {
				return Operand{}, err
			}
			op.Value = v
			p.pos++
		}

	case tok.Type == TokenIdent:
		op = Operand{Type: OperandPosition, Label: tok.Value}
		p.pos++

	default:
		return Operand{}, fmt.Errorf("line %d: invalid operand", line)
	}

	if p.peek(0).Type != TokenRBracket {
		return Operand{}, fmt.Errorf("line %d: missing ]", line)
	}
	p.pos++
	return op, nil
}

func parseInt(tok Token) (int64, error) {
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid integer: %s", tok.Line, tok.Value)
	}
	return v, nil
}

func isRelativeBase(s string) bool {
	return strings.EqualFold(s, "rb")
}
