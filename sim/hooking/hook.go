// Package hooking lets observers attach to the caches and see every access
// without the caches knowing who is watching.
package hooking

// HookPos names a site in a hookable object where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// NamedHookable is a Hookable that has a name that hooks can report.
type NamedHookable interface {
	Hookable
	Name() string
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc turns a function into a Hook. A HookFunc cannot be compared, so it
// is registered by pointer.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f *HookFunc) Func(ctx HookCtx) {
	(*f)(ctx)
}

// NewHookFunc wraps f as a Hook.
func NewHookFunc(f func(ctx HookCtx)) Hook {
	h := HookFunc(f)
	return &h
}

// DomainName returns the name of the domain of a hook context, or an empty
// string if the domain is not named.
func (ctx HookCtx) DomainName() string {
	named, ok := ctx.Domain.(NamedHookable)
	if !ok {
		return ""
	}

	return named.Name()
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, h := range h.hookList {
		if h == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the register Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}
