package usercopy

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosCopyIn triggers after every CopyIn call.
var HookPosCopyIn = &HookPos{Name: "CopyIn"}

// HookPosCopyInString triggers after every CopyInString call.
var HookPosCopyInString = &HookPos{Name: "CopyInString"}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   CopyRecord
}

// CopyRecord describes one finished copy call.
type CopyRecord struct {
	Kind   string
	PID    uint32
	SrcVA  uint64
	Length uint64
	Copied uint64
	Err    error
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook register a hook. Hooks must be registered before the copier is
// shared between goroutines.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
