// Package scripting runs sandboxed GopherLua patch scripts that extend the data
// patch set at load time.
package scripting

import (
	"context"
	"errors"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget shared by all scripts of one
// directory when no limit is configured.
const DefaultInstructionLimit = 100_000

// ErrInstructionLimit is returned when scripts exhaust their opcode budget.
var ErrInstructionLimit = errors.New("lua instruction limit exceeded")

// budget is a context that cancels itself once its opcodes are spent.
// GopherLua polls Done once per executed opcode, so every poll is one charge.
type budget struct {
	context.Context
	cancel context.CancelFunc
	limit  int64
	spent  atomic.Int64
}

// Done charges one opcode and returns the cancellation channel, closed once the
// budget is exhausted.
func (b *budget) Done() <-chan struct{} {
	if b.spent.Add(1) >= b.limit {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is a Lua state restricted to the base, table, string and math
// libraries and to a fixed opcode budget.
type Sandbox struct {
	L      *lua.LState
	budget *budget
}

// NewSandbox creates a Sandbox. dofile, loadfile, load, collectgarbage and
// require are removed so scripts cannot reach the filesystem or load code.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the Sandbox and must call Close.
func NewSandbox(instLimit int) *Sandbox {
	limit := int64(instLimit)
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel, limit: limit}
	L.SetContext(b)
	return &Sandbox{L: L, budget: b}
}

// Exhausted reports whether the opcode budget has run out.
func (s *Sandbox) Exhausted() bool { return s.budget.spent.Load() >= s.budget.limit }

// Spent returns the number of opcodes charged so far.
func (s *Sandbox) Spent() int64 { return s.budget.spent.Load() }

// Close releases the Lua state and the budget context.
func (s *Sandbox) Close() {
	s.budget.cancel()
	s.L.Close()
}
