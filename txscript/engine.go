// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript is the stack-based Bitcoin Script interpreter of spec
// §4.2: opcode execution, control-flow preprocessing, and the
// transaction-aware opcodes CHECKSIG/CHECKMULTISIG/CHECKLOCKTIMEVERIFY/
// CHECKSEQUENCEVERIFY.
package txscript

import (
	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/txscript/opcode"
	"github.com/pkt-cash/btccore/txscript/parsescript"
	"github.com/pkt-cash/btccore/wire"
)

// ScriptRuntimeError wraps every opcode-execution failure, annotated with
// the opcode name and position so callers (and tests) can match on a
// specific failure mode, per spec §7.
var ScriptRuntimeError = er.ScriptErrorType.Code("ScriptRuntime",
	"script execution failed")

func runtimeErr(pc int, op opcode.Opcode, reason string) er.R {
	return ScriptRuntimeError.New(op.Name + " at pc=" + itoa(pc) + ": " + reason)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// TxContext supplies the transaction-aware opcodes with the surrounding
// transaction and the details of the specific input being verified.
type TxContext struct {
	Tx          *wire.MsgTx
	InputIndex  int
	InputAmount int64
	IsSegWit    bool
}

// branch records one open IF/NOTIF frame's resolved jump targets, computed
// by the control-flow preprocessing pass described in spec §4.2.
type branch struct {
	elsePos  int // -1 if none
	endifPos int
	taken    bool
	seenElse bool
}

// Engine is a single script-verification run: main stack, alt stack,
// condition stack, and (optionally) the surrounding transaction context.
type Engine struct {
	script    []byte
	ops       []parsescript.ParsedOpcode
	jumpElse  []int // per-op index; -1 when not an IF/NOTIF
	jumpEndif []int

	pc    int
	stack [][]byte
	alt   [][]byte
	cond  []branch

	codeSepPos int // index into ops of the most recent OP_CODESEPARATOR

	tx *TxContext
}

// NewEngine preprocesses script's control flow and returns a ready-to-run
// Engine. tx may be nil for scripts with no transaction-aware opcodes.
func NewEngine(script []byte, tx *TxContext) (*Engine, er.R) {
	ops, err := parsescript.ParseScript(script)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		script:     script,
		ops:        ops,
		jumpElse:   make([]int, len(ops)),
		jumpEndif:  make([]int, len(ops)),
		codeSepPos: 0,
		tx:         tx,
	}
	if err := e.preprocess(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetInitialStack seeds the main stack before Execute runs, used when
// verifying a witness program: the witness items (minus any that are part
// of scriptCode itself) become the starting stack rather than being pushed
// by the script.
func (e *Engine) SetInitialStack(items [][]byte) {
	e.stack = make([][]byte, len(items))
	copy(e.stack, items)
}

// preprocess pairs every IF/NOTIF with its ELSE (if any) and ENDIF,
// rejecting unbalanced control flow up front.
func (e *Engine) preprocess() er.R {
	var stack []int
	for i, op := range e.ops {
		e.jumpElse[i] = -1
		e.jumpEndif[i] = -1
		switch op.Opcode.Value {
		case opcode.OP_IF, opcode.OP_NOTIF:
			stack = append(stack, i)
		case opcode.OP_ELSE:
			if len(stack) == 0 {
				return runtimeErr(i, op.Opcode, "ELSE without matching IF")
			}
			top := stack[len(stack)-1]
			if e.jumpElse[top] != -1 {
				return runtimeErr(i, op.Opcode, "multiple ELSE for one IF")
			}
			e.jumpElse[top] = i
		case opcode.OP_ENDIF:
			if len(stack) == 0 {
				return runtimeErr(i, op.Opcode, "ENDIF without matching IF")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			e.jumpEndif[top] = i
		}
	}
	if len(stack) != 0 {
		return runtimeErr(stack[0], e.ops[stack[0]].Opcode, "unterminated IF/NOTIF")
	}
	return nil
}

// Execute runs the script to completion. Returns an error if the script
// fails at any point, or if the final stack's top item is not true.
func (e *Engine) Execute() er.R {
	for e.pc < len(e.ops) {
		if err := e.step(); err != nil {
			return err
		}
	}
	if len(e.cond) != 0 {
		return ScriptRuntimeError.New("script ended with unterminated conditional")
	}
	if len(e.stack) == 0 {
		return ScriptRuntimeError.New("script ended with an empty stack")
	}
	if !asBool(e.stack[len(e.stack)-1]) {
		return ScriptRuntimeError.New("script ended with a false top stack element")
	}
	return nil
}

func (e *Engine) executing() bool {
	for _, b := range e.cond {
		if !b.taken {
			return false
		}
	}
	return true
}

// skipTo moves pc so that the next step runs the op at target (an ELSE or
// ENDIF), failing if the skipped range holds OP_VERIF/OP_VERNOTIF.
func (e *Engine) skipTo(target int) er.R {
	for i := e.pc + 1; i < target; i++ {
		if v := e.ops[i].Opcode.Value; v == opcode.OP_VERIF || v == opcode.OP_VERNOTIF {
			return runtimeErr(i, e.ops[i].Opcode, "disabled opcode")
		}
	}
	e.pc = target - 1
	return nil
}

func (e *Engine) step() er.R {
	pop := e.ops[e.pc]
	op := pop.Opcode

	// OP_VERIF/OP_VERNOTIF are invalid even when skipped; every other
	// opcode is a no-op when the enclosing branch is not taken.
	if op.Value == opcode.OP_VERIF || op.Value == opcode.OP_VERNOTIF {
		return runtimeErr(e.pc, op, "disabled opcode")
	}

	executing := e.executing()

	switch op.Value {
	case opcode.OP_IF, opcode.OP_NOTIF:
		taken := false
		if executing {
			if len(e.stack) == 0 {
				return runtimeErr(e.pc, op, "missing condition operand")
			}
			top := e.pop()
			b := asBool(top)
			if op.Value == opcode.OP_NOTIF {
				b = !b
			}
			taken = b
		}
		e.cond = append(e.cond, branch{
			elsePos:  e.jumpElse[e.pc],
			endifPos: e.jumpEndif[e.pc],
			taken:    !executing || taken,
		})
		if executing && !taken {
			target := e.jumpEndif[e.pc]
			if e.jumpElse[e.pc] != -1 {
				target = e.jumpElse[e.pc]
			}
			if err := e.skipTo(target); err != nil {
				return err
			}
		}
		e.pc++
		return nil
	case opcode.OP_ELSE:
		if len(e.cond) == 0 {
			return runtimeErr(e.pc, op, "ELSE without IF")
		}
		top := &e.cond[len(e.cond)-1]
		if top.seenElse {
			return runtimeErr(e.pc, op, "multiple ELSE")
		}
		top.seenElse = true
		top.taken = !top.taken
		if !top.taken {
			if err := e.skipTo(top.endifPos); err != nil {
				return err
			}
		}
		e.pc++
		return nil
	case opcode.OP_ENDIF:
		if len(e.cond) == 0 {
			return runtimeErr(e.pc, op, "ENDIF without IF")
		}
		e.cond = e.cond[:len(e.cond)-1]
		e.pc++
		return nil
	}

	if !executing {
		e.pc++
		return nil
	}

	if op.Value == opcode.OP_RESERVED || op.Value == opcode.OP_VER ||
		op.Value == opcode.OP_RESERVED1 || op.Value == opcode.OP_RESERVED2 {
		return runtimeErr(e.pc, op, "disabled opcode")
	}

	if op.IsPushValue() {
		if err := e.execPush(pop); err != nil {
			return err
		}
		e.pc++
		return nil
	}
	if op.IsSmallInt() {
		e.push(fromInt(newScriptNum(int64(op.AsSmallInt()))))
		e.pc++
		return nil
	}

	if err := e.execOp(op); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) execPush(pop parsescript.ParsedOpcode) er.R {
	if pop.Opcode.Value == opcode.OP_0 {
		e.push(nil)
		return nil
	}
	if pop.Opcode.Value == opcode.OP_1NEGATE {
		e.push(fromInt(newScriptNum(-1)))
		return nil
	}
	e.push(pop.Data)
	return nil
}

func (e *Engine) push(item []byte) { e.stack = append(e.stack, item) }

func (e *Engine) pop() []byte {
	n := len(e.stack)
	item := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return item
}

func (e *Engine) peek(fromTop int) ([]byte, er.R) {
	idx := len(e.stack) - 1 - fromTop
	if idx < 0 {
		return nil, ScriptRuntimeError.New("stack underflow")
	}
	return e.stack[idx], nil
}

func (e *Engine) requireDepth(n int) er.R {
	if len(e.stack) < n {
		return ScriptRuntimeError.New("stack underflow")
	}
	return nil
}

// SubScript returns the bytes of the current subscript: from the most
// recent OP_CODESEPARATOR (or the start) to the end of the script, per
// spec §4.2's CHECKSIG semantics.
func (e *Engine) SubScript() ([]byte, er.R) {
	return parsescript.UnparseScript(e.ops[e.codeSepPos:])
}
