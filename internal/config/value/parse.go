package value

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every structural parse failure.
var ErrMalformed = errors.New("malformed value")

// SyntaxError describes where a raw value stopped following the grammar.
type SyntaxError struct {
	// Offset is the byte offset in the raw text.
	Offset int
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed value at offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns ErrMalformed so callers can use errors.Is.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformed
}

// Parse turns raw text into a node tree.
//
// Blank text yields an empty leaf. Text consisting of a single bare token
// yields a leaf holding that token. Anything else yields a container whose
// children are the top-level comma-separated elements; bracketed elements
// become containers themselves. An empty bracket pair "[]" is a container
// without children.
func Parse(raw string) (*Node, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &Node{}, nil
	}

	p := &parser{src: raw}
	p.skipSpace()
	children, err := p.parseList(-1)
	if err != nil {
		return nil, err
	}

	if len(children) == 1 && children[0].IsLeaf() && trimmed[0] != '[' {
		return children[0], nil
	}
	return &Node{Children: children}, nil
}

type parser struct {
	src string
	pos int
}

// parseList reads elements separated by commas. open is the offset of the
// opening bracket, or -1 for the implicit top-level list.
func (p *parser) parseList(open int) ([]*Node, error) {
	nested := open >= 0

	p.skipSpace()
	if nested && p.peek() == ']' {
		p.pos++
		return []*Node{}, nil
	}

	var nodes []*Node
	for {
		p.skipSpace()
		n, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)

		p.skipSpace()
		if p.done() {
			if nested {
				return nil, p.errorf(open, "unmatched '['")
			}
			return nodes, nil
		}

		switch c := p.src[p.pos]; c {
		case ',':
			p.pos++
			p.skipSpace()
			if p.done() {
				return nil, p.errorf(p.pos, "element is empty")
			}
		case ']':
			if !nested {
				return nil, p.errorf(p.pos, "unmatched ']'")
			}
			p.pos++
			return nodes, nil
		default:
			return nil, p.errorf(p.pos, "unexpected %q after element", c)
		}
	}
}

func (p *parser) parseElement() (*Node, error) {
	if p.done() {
		return nil, p.errorf(p.pos, "element is empty")
	}

	switch p.src[p.pos] {
	case '[':
		open := p.pos
		p.pos++
		children, err := p.parseList(open)
		if err != nil {
			return nil, err
		}
		return &Node{Children: children}, nil
	case ',', ']':
		return nil, p.errorf(p.pos, "element is empty")
	}

	return p.parseToken()
}

// parseToken reads a bare or quoted token up to the next separator.
func (p *parser) parseToken() (*Node, error) {
	start := p.pos
	for !p.done() {
		switch c := p.src[p.pos]; c {
		case ',', ']':
			return &Node{Value: strings.TrimSpace(p.src[start:p.pos])}, nil
		case '[':
			return nil, p.errorf(p.pos, "unexpected '[' inside element")
		case '"':
			if err := p.skipQuoted(); err != nil {
				return nil, err
			}
		default:
			p.pos++
		}
	}
	return &Node{Value: strings.TrimSpace(p.src[start:])}, nil
}

// skipQuoted advances past a double-quoted run, honouring backslash escapes.
func (p *parser) skipQuoted() error {
	open := p.pos
	p.pos++
	for !p.done() {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			return nil
		default:
			p.pos++
		}
	}
	p.pos = len(p.src)
	return p.errorf(open, "unterminated quote")
}

func (p *parser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
