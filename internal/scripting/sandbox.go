// Package scripting provides a sandboxed GopherLua execution environment
// for henchman ability gates. It has no dependency on combat packages; all
// game interactions are injected via Manager callback fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the number of Lua opcodes one hook call may
// execute when no override is configured.
const DefaultInstructionLimit = 100_000

// blockedGlobals are removed from every sandbox: they reach the filesystem,
// load arbitrary chunks or control the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// opBudget is a context that cancels itself once Done has been called limit
// times. GopherLua polls Done once per opcode, so this caps the opcodes a
// call may run.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

// Done spends one opcode and returns the cancellation channel.
func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newOpBudget returns a context that cancels after limit calls to Done.
//
// Precondition: limit > 0.
func newOpBudget(limit int) (context.Context, context.CancelFunc) {
	b := &opBudget{}
	b.Context, b.cancel = context.WithCancel(context.Background())
	b.left.Store(int64(limit))
	return b, b.cancel
}

// NewSandboxedState creates a GopherLua LState that loads only the base,
// table, string and math libraries, has blockedGlobals removed, and runs
// under an opcode budget of instLimit.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for RegisterModules and DoFile,
// and the cancel function of its load-time budget. The caller owns both and
// must call cancel and L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := newOpBudget(instLimit)
	L.SetContext(ctx)
	return L, cancel
}
