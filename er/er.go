// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package er implements the error-result convention used throughout
// btccore: every fallible call returns an er.R instead of a bare error, so
// that failures carry a stack trace and an optional chain of causes back to
// the point where the problem actually occurred.
package er

import (
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
)

// R is a result - either nil (success) or a non-nil error carrying a message,
// a capture-time stack trace, and an optional wrapped cause.
type R interface {
	error

	// Message returns the human readable description of the error, without
	// the stack trace.
	Message() string

	// Cause returns the error that this one wraps, or nil if there is none.
	Cause() R

	// AddMessage prepends additional context to the error's message.
	AddMessage(msg string)

	// Stack returns the captured stack trace as a multi-line string.
	Stack() string
}

type erImpl struct {
	code  *ErrorCode
	msg   string
	cause R
	stack *goerrors.Error
}

func (e *erImpl) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if e.code != nil {
		sb.WriteString(" [")
		sb.WriteString(e.code.Type.Name)
		sb.WriteString(".")
		sb.WriteString(e.code.Name)
		sb.WriteString("]")
	}
	c := e.cause
	for c != nil {
		sb.WriteString(": ")
		sb.WriteString(c.Message())
		if ci, ok := c.(*erImpl); ok {
			c = ci.cause
		} else {
			break
		}
	}
	return sb.String()
}

func (e *erImpl) Message() string { return e.msg }
func (e *erImpl) Cause() R        { return e.cause }
func (e *erImpl) Stack() string   { return string(e.stack.Stack()) }

func (e *erImpl) AddMessage(msg string) {
	e.msg = msg + ": " + e.msg
}

func wrap(skip int, msg string, cause R) R {
	return &erImpl{
		msg:   msg,
		cause: cause,
		stack: goerrors.Wrap(fmt.Errorf("%s", msg), skip+1),
	}
}

// New builds a new, codeless error result with the given message.
func New(msg string) R {
	return wrap(1, msg, nil)
}

// Errorf builds a new, codeless error result with a formatted message.
func Errorf(format string, args ...interface{}) R {
	return wrap(1, fmt.Sprintf(format, args...), nil)
}

// E adapts a standard library error into an er.R. Returns nil if err is nil.
func E(err error) R {
	if err == nil {
		return nil
	}
	if r, ok := err.(R); ok {
		return r
	}
	return wrap(1, err.Error(), nil)
}

// ErrorType is a broad category of errors, matching one row of spec §7's
// error taxonomy (KeyCreate, NetworkConfig, Transaction, ScriptRuntime, ...).
type ErrorType struct {
	Name string
}

// ErrorCode is a specific, named error within an ErrorType, constructed once
// at package scope and raised many times via New/Default.
type ErrorCode struct {
	Type   *ErrorType
	Name   string
	Detail string
}

// Code registers a new named error within this type, with a fixed
// human-readable detail suffix appended to every instance raised from it.
func (t *ErrorType) Code(name, detail string) *ErrorCode {
	return &ErrorCode{Type: t, Name: name, Detail: detail}
}

// CodeWithDetail is an alias of Code kept for readability at call sites that
// want to read "GenericErrorType.CodeWithDetail(...)" - matches the idiom
// used throughout the ambient wallet code this package is modeled on.
func (t *ErrorType) CodeWithDetail(name, detail string) *ErrorCode {
	return t.Code(name, detail)
}

// New raises this error code with additional context and an optional cause.
func (c *ErrorCode) New(msg string, cause ...R) R {
	var cz R
	if len(cause) > 0 {
		cz = cause[0]
	}
	full := c.Detail
	if msg != "" {
		full = msg + ": " + c.Detail
	}
	e := wrap(1, full, cz).(*erImpl)
	e.code = c
	return e
}

// Default raises this error code with no additional context.
func (c *ErrorCode) Default() R {
	return c.New("")
}

// Is reports whether err (or any error in its cause chain) was raised by
// this ErrorCode.
func (c *ErrorCode) Is(err R) bool {
	for err != nil {
		if ei, ok := err.(*erImpl); ok {
			if ei.code == c {
				return true
			}
			err = ei.cause
			continue
		}
		break
	}
	return false
}

// Predefined, broad error types corresponding to spec §7's taxonomy groups.
var (
	GenericErrorType         = &ErrorType{Name: "Generic"}
	KeyErrorType             = &ErrorType{Name: "Key"}
	NetworkErrorType         = &ErrorType{Name: "Network"}
	TransactionErrorType     = &ErrorType{Name: "Transaction"}
	ScriptErrorType          = &ErrorType{Name: "Script"}
	SignErrorType            = &ErrorType{Name: "Sign"}
	PSBTErrorType            = &ErrorType{Name: "PSBT"}
	UTXOErrorType            = &ErrorType{Name: "UTXO"}
)

// loopBreak is a sentinel error used to stop an iteration early (e.g. from
// within a ForEach callback) without that being treated as a real failure.
type loopBreak struct{}

func (loopBreak) Error() string    { return "loop break" }
func (loopBreak) Message() string  { return "loop break" }
func (loopBreak) Cause() R         { return nil }
func (loopBreak) AddMessage(string) {}
func (loopBreak) Stack() string    { return "" }

// LoopBreak is a sentinel R value a ForEach-style callback can return to
// stop iteration early without signalling an error to the caller.
var LoopBreak R = loopBreak{}

// IsLoopBreak reports whether err is the LoopBreak sentinel.
func IsLoopBreak(err R) bool {
	_, ok := err.(loopBreak)
	return ok
}
