package rpnjit

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

type lexToken struct {
	text string
	kind tokenKind
	sym  symbol
	// val is the value of a number token.
	val float64
	pos int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a numeric literal.
	tokenNum
	// tokenVar is the free variable, spelled x or t.
	tokenVar
	// tokenConst is a named constant.
	tokenConst
	// tokenFunc is a named function.
	tokenFunc
	// tokenIdent is an identifier that names nothing.
	tokenIdent
	// tokenOp is an arithmetic operator, including ^ and !.
	tokenOp
	// tokenCmp is a comparison operator.
	tokenCmp
	// tokenTernary is ? or :.
	tokenTernary
	// tokenPunct is a bracket or comma.
	tokenPunct
	// tokenInvalid is a rune that starts no token.
	tokenInvalid
)

var kindnames = [...]string{
	tokenNone:    "None",
	tokenEOF:     "EOF",
	tokenNum:     "Num",
	tokenVar:     "Var",
	tokenConst:   "Const",
	tokenFunc:    "Func",
	tokenIdent:   "Ident",
	tokenOp:      "Op",
	tokenCmp:     "Cmp",
	tokenTernary: "Ternary",
	tokenPunct:   "Punct",
	tokenInvalid: "Invalid",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(kindnames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindnames[k]
}

type lexer struct {
	src io.RuneScanner
	buf strings.Builder
	// rune is the number of runes consumed.
	rune int
	// signed allows a sign directly after an exponent marker.
	signed bool
	// err is the first error, returned by every call to next after it.
	err error
}

func lex(src io.RuneScanner, signed bool) *lexer {
	return &lexer{src: src, signed: signed}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// peek reports whether the next rune is want, consuming it if so.
func (l *lexer) peek(want rune) (bool, error) {
	r, err := l.readRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	if r != want {
		l.unreadRune()
		return false, nil
	}
	return true, nil
}

// next scans the next token. At the end of input the result is an EOF token,
// every time. Once next returns an error, including a LexError for an invalid
// rune, it returns that error on every later call.
func (l *lexer) next() (lexToken, error) {
	if l.err != nil {
		return lexToken{kind: tokenInvalid, pos: l.rune}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
	}
	return tok, err
}

func (l *lexer) scan() (lexToken, error) {
	defer l.buf.Reset()
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lexToken{kind: tokenEOF, pos: l.rune + 1}, nil
			}
			return lexToken{kind: tokenInvalid, pos: l.rune}, err
		}
		if r <= ' ' {
			continue
		}
		tok := lexToken{pos: l.rune}
		switch {
		case isLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			switch tok.text {
			case "x", "t":
				tok.sym = symVar
			default:
				tok.sym = names[tok.text]
			}
			if tok.sym == symNone {
				tok.sym = symIdent
			}
		case isDigit(r):
			l.unreadRune()
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.sym = symNum
			tok.val = parsePrefix(tok.text)
		default:
			sym, err := l.scanOp(r)
			if err != nil {
				return tok, err
			}
			if sym == symNone {
				tok.text = string(r)
				tok.kind = tokenInvalid
				return tok, &LexError{Col: tok.pos, Text: tok.text}
			}
			tok.sym = sym
			tok.text = symtab[sym].text
		}
		tok.kind = symtab[tok.sym].kind
		return tok, nil
	}
}

// scanOp scans an operator or punctuation token that starts with r. The
// result is symNone if r starts no such token.
func (l *lexer) scanOp(r rune) (symbol, error) {
	switch r {
	case '+':
		return symPlus, nil
	case '-':
		return symMinus, nil
	case '*':
		return symMul, nil
	case '/':
		return symDiv, nil
	case '(':
		return symOpen, nil
	case ')':
		return symClose, nil
	case '!':
		return symFact, nil
	case '^':
		return symPow, nil
	case ',':
		return symComma, nil
	case '=':
		return symEQ, nil
	case '?':
		return symQuestion, nil
	case ':':
		return symColon, nil
	case '>':
		ok, err := l.peek('=')
		if ok {
			return symGE, err
		}
		return symGT, err
	case '<':
		if ok, err := l.peek('>'); ok || err != nil {
			return symNE, err
		}
		ok, err := l.peek('=')
		if ok {
			return symLE, err
		}
		return symLT, err
	}
	return symNone, nil
}

// scanNum scans a run of digits, dots, and exponent markers. Signs end the
// run unless signed exponents are enabled and the sign follows a marker.
func (l *lexer) scanNum() error {
	var prev rune
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch {
		case isDigit(r), r == '.', r == 'e', r == 'E':
		case l.signed && (r == '+' || r == '-') && (prev == 'e' || prev == 'E'):
		default:
			l.unreadRune()
			return nil
		}
		l.buf.WriteRune(r)
		prev = r
	}
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case isLetter(r), isDigit(r), r == '_':
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// parsePrefix parses the longest prefix of s that is a valid floating-point
// literal, so "1e" is 1 and "1.2.3" is 1.2. Literals too large for float64
// are infinite. s must start with a digit.
func parsePrefix(s string) float64 {
	for n := len(s); n > 0; n-- {
		v, err := strconv.ParseFloat(s[:n], 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}
	panic("rpnjit: number without digits: " + strconv.Quote(s))
}

// LexError indicates a rune that begins no token. It implements InputError.
type LexError struct {
	// Text is the invalid rune.
	Text string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	return errpos(err.Col, "invalid character "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}
