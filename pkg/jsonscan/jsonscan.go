// Package jsonscan implements a hand-written recursive-descent JSON
// scanner over a byte buffer, mirroring the original source's json_init/
// json_read (types/json.c). It never builds a DOM: callers pull one
// key/value (or array element) token at a time and recurse into
// container values themselves.
package jsonscan

import "github.com/khildebrand/lowpan6/pkg/strview"

// Type classifies a Token's value.
type Type uint8

const (
	Object Type = '{'
	Array  Type = '['
	String Type = '"'
)

// Token is one scanned "key":value pair (Key is empty within an array).
// Value is the raw, unprocessed slice of text for the value: a nested
// container's full bracketed text when Type is Object or Array, a quoted
// string's content when Type is String (also covering bare numbers/
// true/false/null, which terminate on the same delimiters a quoted
// string would).
type Token struct {
	Type  Type
	Key   strview.View
	Value strview.View
}

// Scanner holds scan position within data.
type Scanner struct {
	data []byte
	pos  int
	base Token
}

// Init scans forward to the first '{' or '[' in data and returns a
// Scanner positioned just past it, along with the base container token.
// Returns false if data contains neither.
func Init(data []byte) (*Scanner, bool) {
	for i, b := range data {
		if b == '{' || b == '[' {
			s := &Scanner{data: data, pos: i + 1}
			s.base.Type = Type(b)
			s.base.Value = strview.New(data, i, len(data))
			return s, true
		}
	}
	return nil, false
}

// Base returns the container token Init found.
func (s *Scanner) Base() Token { return s.base }

func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

// readQuoted reads a "..." string starting at s.pos (which must point at
// the opening quote), returning the view of its content (quotes excluded)
// and leaving s.pos just past the closing quote.
func (s *Scanner) readQuoted() (strview.View, bool) {
	if s.pos >= len(s.data) || s.data[s.pos] != '"' {
		return strview.View{}, false
	}
	start := s.pos + 1
	i := start
	for i < len(s.data) && s.data[i] != '"' {
		if s.data[i] == '\\' && i+1 < len(s.data) {
			i++
		}
		i++
	}
	if i >= len(s.data) {
		return strview.View{}, false
	}
	v := strview.New(s.data, start, i)
	s.pos = i + 1
	return v, true
}

// readBareValue reads an unquoted value (number, true, false, null),
// terminating at the first ',', '}', or ']'.
func (s *Scanner) readBareValue() strview.View {
	start := s.pos
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ',', '}', ']':
			return strview.New(s.data, start, s.pos)
		}
		s.pos++
	}
	return strview.New(s.data, start, s.pos)
}

// readContainer reads a bracketed container value ('{' or '[') starting
// at s.pos, returning its full bracketed text (brackets included) and
// leaving s.pos just past the matching close bracket. Handles nested
// containers and quoted strings so embedded brackets don't confuse depth
// tracking.
func (s *Scanner) readContainer() (strview.View, bool) {
	open := s.data[s.pos]
	var close byte
	if open == '{' {
		close = '}'
	} else {
		close = ']'
	}
	start := s.pos
	depth := 0
	i := s.pos
	for i < len(s.data) {
		switch s.data[i] {
		case '"':
			i++
			for i < len(s.data) && s.data[i] != '"' {
				if s.data[i] == '\\' && i+1 < len(s.data) {
					i++
				}
				i++
			}
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				v := strview.New(s.data, start, i+1)
				s.pos = i + 1
				return v, true
			}
		}
		i++
	}
	return strview.View{}, false
}

// Read returns the next token from parent's container (an object pair or
// array element), or false at end of container. parent.Type selects
// whether a "key": prefix is expected.
func Read(s *Scanner, parent Token) (Token, bool) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return Token{}, false
	}
	if s.data[s.pos] == '}' || s.data[s.pos] == ']' {
		s.pos++
		return Token{}, false
	}

	var tok Token
	if parent.Type == Object {
		key, ok := s.readQuoted()
		if !ok {
			return Token{}, false
		}
		tok.Key = key
		s.skipSpace()
		if s.pos >= len(s.data) || s.data[s.pos] != ':' {
			return Token{}, false
		}
		s.pos++
		s.skipSpace()
	}

	if s.pos >= len(s.data) {
		return Token{}, false
	}

	switch s.data[s.pos] {
	case '{', '[':
		tok.Type = Type(s.data[s.pos])
		v, ok := s.readContainer()
		if !ok {
			return Token{}, false
		}
		tok.Value = v
	case '"':
		tok.Type = String
		v, ok := s.readQuoted()
		if !ok {
			return Token{}, false
		}
		tok.Value = v
	default:
		tok.Type = String
		tok.Value = s.readBareValue()
	}

	return tok, true
}
