package rpnjit

import "strconv"

// StackError is an error indicating an operator or function with fewer
// operands on the stack than it consumes. It implements InputError.
type StackError struct {
	// Col is the position of the operator.
	Col int
	// Token is the operator or function name.
	Token string
	// Have is the stack depth when the token was reached.
	Have int
	// Want is the number of operands the token consumes.
	Want int
}

func (err *StackError) Error() string {
	return errpos(err.Col, err.Token+" needs "+strconv.Itoa(err.Want)+" operands, have "+strconv.Itoa(err.Have))
}

func (err *StackError) Pos() int {
	return err.Col
}

// TokenError is an error indicating a token that has no meaning in an
// expression, including identifiers that name nothing. It implements
// InputError.
type TokenError struct {
	// Col is the position of the token.
	Col int
	// Token is the token text.
	Token string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "cannot use "+strconv.Quote(err.Token))
}

func (err *TokenError) Pos() int {
	return err.Col
}

// ShapeError is an error indicating that the input ended with other than
// exactly one value on the stack. It implements InputError.
type ShapeError struct {
	// Col is the position of the end of input.
	Col int
	// Depth is the number of values left.
	Depth int
}

func (err *ShapeError) Error() string {
	if err.Depth == 0 {
		return errpos(err.Col, "no expression")
	}
	return errpos(err.Col, "expression leaves "+strconv.Itoa(err.Depth)+" values")
}

func (err *ShapeError) Pos() int {
	return err.Col
}

// BackendError is an error from turning a complete graph into a program.
type BackendError struct {
	Err error
}

func (err *BackendError) Error() string {
	return "backend: " + err.Err.Error()
}

func (err *BackendError) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*StackError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*ShapeError)(nil)
	_ InputError = (*LexError)(nil)
)
