package compiler

import (
	"github.com/easyrust/easyrust/token"
)

type ScopeKind int

const (
	FuncScope ScopeKind = iota
	BlockScope
)

type Scope[T any] struct {
	Owner     string
	Elems     map[string]T
	ScopeKind ScopeKind
}

func NewScope[T any](owner string, sk ScopeKind) Scope[T] {
	return Scope[T]{
		Owner:     owner,
		Elems:     make(map[string]T),
		ScopeKind: sk,
	}
}

func PushScope[T any](scopes *[]Scope[T], owner string, sk ScopeKind) {
	*scopes = append(*scopes, NewScope[T](owner, sk))
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 0 {
		panic("scope stack underflow")
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put does not need a pointer, as it modifies the map within a scope, not the slice itself.
func Put[T any](scopes []Scope[T], name string, elem T) {
	scopes[len(scopes)-1].Elems[name] = elem
}

// GetLocal looks only at the innermost frame.
func GetLocal[T any](scopes []Scope[T], name string) (T, bool) {
	var zero T
	if len(scopes) == 0 {
		return zero, false
	}
	e, ok := scopes[len(scopes)-1].Elems[name]
	return e, ok
}

func Get[T any](scopes []Scope[T], name string) (T, bool) {
	// Search from innermost scope outward, stopping at the enclosing
	// function so no variable leaks between functions.
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
		if scopes[i].ScopeKind == FuncScope {
			break
		}
	}

	var zero T
	return zero, false
}

// Every function, main included, gets one flat frame. Blocks of if, while
// and for do not open frames.
func (c *Compiler) enterFuncScope(owner string) {
	PushScope(&c.Scopes, owner, FuncScope)
}

func (c *Compiler) exitFuncScope() {
	PopScope(&c.Scopes)
}

func (c *Compiler) declare(tok token.Token, sym *Symbol) error {
	if _, ok := GetLocal(c.Scopes, sym.Name); ok {
		return c.errorf(tok, token.DuplicateDeclaration, "%s redeclared in %s", sym.Name, c.Scopes[len(c.Scopes)-1].Owner)
	}
	Put(c.Scopes, sym.Name, sym)
	return nil
}

func (c *Compiler) resolve(tok token.Token, name string) (*Symbol, error) {
	sym, ok := Get(c.Scopes, name)
	if !ok {
		return nil, c.errorf(tok, token.UndefinedSymbol, "undefined: %s", name)
	}
	return sym, nil
}
