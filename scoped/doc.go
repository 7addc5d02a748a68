// Package scoped implements named settings with stack-disciplined temporary
// overrides and parent-scope inheritance.
//
// A Key declares an option and its default. Binding a key to a Scope yields an
// Option accessor:
//
//	global := scoped.NewScope("global", nil)
//	class := global.Child("Foo")
//	load := scoped.NewKey("load_on_init", true)
//
//	guard := load.In(global).Push(false)
//	load.In(class).Get() // false, inherited from global
//	_ = guard.Restore()
//
// Push/Pop follow LIFO order. With runs a function inside a push/restore block
// and Wrap turns that block into a reusable decorator.
package scoped
