package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Element addresses a DOM node as the Index-th match of Selector inside
// Parent, or inside the document when Parent is nil.
type Element struct {
	Selector string
	Index    int
	Parent   *Element
}

// Query returns the first document-level match of selector.
func Query(selector string) Element {
	return Element{Selector: selector}
}

// Nth returns the i-th match of the same selector in the same scope.
func (e Element) Nth(i int) Element {
	e.Index = i
	return e
}

// Find returns the first match of selector inside e.
func (e Element) Find(selector string) Element {
	parent := e
	return Element{Selector: selector, Parent: &parent}
}

// Path is a readable, stable key for the element chain.
func (e Element) Path() string {
	part := fmt.Sprintf("%s[%d]", e.Selector, e.Index)
	if e.Parent == nil {
		return part
	}
	return e.Parent.Path() + " > " + part
}

// js returns an expression evaluating to the node or null.
func (e Element) js() string {
	return fmt.Sprintf("((s)=>s?(s.querySelectorAll(%s)[%d]||null):null)(%s)",
		quote(e.Selector), e.Index, e.scopeJS())
}

// scopeJS returns an expression for the node e is searched within.
func (e Element) scopeJS() string {
	if e.Parent == nil {
		return "document"
	}
	return e.Parent.js()
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
