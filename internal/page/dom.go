package page

import (
	"strings"
)

// Element is one node of a page tree. Form controls keep their live state
// (Value, Checked, Disabled) directly on the node.
type Element struct {
	Tag      string
	ID       string
	Name     string
	Type     string
	Value    string
	Default  string
	Text     string
	Required bool
	Pattern  string
	Checked  bool
	Disabled bool

	// Action is the element's default behaviour. It runs after an event
	// dispatched on the element finishes without being prevented.
	Action func() error

	attrs     map[string]string
	classes   []string
	children  []*Element
	parent    *Element
	listeners map[string][]Listener
}

// Option configures an element built with El.
type Option func(*Element)

// El builds an element. It is the usual way tests and renderers assemble a tree.
func El(tag string, opts ...Option) *Element {
	e := &Element{Tag: tag}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func ID(id string) Option          { return func(e *Element) { e.ID = id } }
func Name(name string) Option      { return func(e *Element) { e.Name = name } }
func Type(typ string) Option       { return func(e *Element) { e.Type = typ } }
func Text(text string) Option      { return func(e *Element) { e.Text = text } }
func Pattern(p string) Option      { return func(e *Element) { e.Pattern = p } }
func Required() Option             { return func(e *Element) { e.Required = true } }
func Disabled() Option             { return func(e *Element) { e.Disabled = true } }
func Action(f func() error) Option { return func(e *Element) { e.Action = f } }

// Value sets both the current value and the value a form reset restores.
func Value(v string) Option {
	return func(e *Element) {
		e.Value = v
		e.Default = v
	}
}

// Checked marks a radio or checkbox as checked by default.
func Checked() Option {
	return func(e *Element) {
		e.Checked = true
		e.SetAttr("checked", "")
	}
}

func Class(names ...string) Option {
	return func(e *Element) {
		for _, n := range names {
			e.AddClass(n)
		}
	}
}

func Attr(key, value string) Option {
	return func(e *Element) { e.SetAttr(key, value) }
}

func Children(children ...*Element) Option {
	return func(e *Element) {
		for _, c := range children {
			e.AppendChild(c)
		}
	}
}

func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

func (e *Element) AttrOr(key, fallback string) string {
	if v, ok := e.attrs[key]; ok {
		return v
	}
	return fallback
}

func (e *Element) HasAttr(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

func (e *Element) SetAttr(key, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
}

func (e *Element) RemoveAttr(key string) {
	delete(e.attrs, key)
}

func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	e.classes = append(e.classes, name)
}

func (e *Element) RemoveClass(name string) {
	kept := e.classes[:0]
	for _, c := range e.classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	e.classes = kept
}

// Classes returns a copy of the element's class list.
func (e *Element) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the element's child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

func (e *Element) AppendChild(c *Element) {
	c.Remove()
	c.parent = e
	e.children = append(e.children, c)
}

// InsertChild places c at position i among e's children.
func (e *Element) InsertChild(i int, c *Element) {
	c.Remove()
	if i < 0 {
		i = 0
	}
	if i > len(e.children) {
		i = len(e.children)
	}
	c.parent = e
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = c
}

// InsertAfter places c directly after e under e's parent.
func (e *Element) InsertAfter(c *Element) {
	if e.parent == nil {
		return
	}
	e.parent.InsertChild(e.parent.indexOf(e)+1, c)
}

// Remove detaches e from its parent. Detaching a detached element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := p.indexOf(e); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	e.parent = nil
}

// Attached reports whether e still hangs off a parent.
func (e *Element) Attached() bool { return e.parent != nil }

func (e *Element) NextSibling() *Element {
	if e.parent == nil {
		return nil
	}
	i := e.parent.indexOf(e)
	if i < 0 || i+1 >= len(e.parent.children) {
		return nil
	}
	return e.parent.children[i+1]
}

func (e *Element) indexOf(c *Element) int {
	for i, child := range e.children {
		if child == c {
			return i
		}
	}
	return -1
}

// Walk visits e and its descendants depth first. Returning false from fn
// skips the visited node's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		c.Walk(fn)
	}
}

// Find returns every descendant of e (e included) matching pred, in document order.
func (e *Element) Find(pred func(*Element) bool) []*Element {
	var out []*Element
	e.Walk(func(n *Element) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (e *Element) First(pred func(*Element) bool) *Element {
	var found *Element
	e.Walk(func(n *Element) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func (e *Element) ByClass(name string) []*Element {
	return e.Find(func(n *Element) bool { return n.HasClass(name) })
}

func (e *Element) FirstByClass(name string) *Element {
	return e.First(func(n *Element) bool { return n.HasClass(name) })
}

func (e *Element) ByName(name string) []*Element {
	return e.Find(func(n *Element) bool { return n.Name == name })
}

func (e *Element) FirstByName(name string) *Element {
	return e.First(func(n *Element) bool { return n.Name == name })
}

func (e *Element) ByTag(tag string) []*Element {
	return e.Find(func(n *Element) bool { return n.Tag == tag })
}

// Closest returns the nearest ancestor of e (e included) matching pred.
func (e *Element) Closest(pred func(*Element) bool) *Element {
	for n := e; n != nil; n = n.parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// IsField reports whether e is a form control that carries a value.
func (e *Element) IsField() bool {
	switch e.Tag {
	case "select", "textarea":
		return true
	case "input":
		switch e.Type {
		case "submit", "button", "reset", "image":
			return false
		}
		return true
	}
	return false
}

// IsSubmitButton reports whether activating e submits its form.
func (e *Element) IsSubmitButton() bool {
	switch e.Tag {
	case "button":
		return e.Type == "" || e.Type == "submit"
	case "input":
		return e.Type == "submit"
	}
	return false
}

// Form returns the enclosing form of e, or nil.
func (e *Element) Form() *Element {
	return e.Closest(func(n *Element) bool { return n.Tag == "form" })
}

// TextContent joins the text of e and its descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.Walk(func(n *Element) bool {
		if n.Text != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(n.Text)
		}
		return true
	})
	return b.String()
}

// Document is the explicit page tree every layer operation works against.
type Document struct {
	Root *Element

	focused *Element
	onError func(error)
}

// NewDocument wraps children in a body element.
func NewDocument(children ...*Element) *Document {
	return &Document{Root: El("body", Children(children...))}
}

func (d *Document) GetByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.Root.First(func(n *Element) bool { return n.ID == id })
}

func (d *Document) Focus(e *Element) { d.focused = e }

func (d *Document) Focused() *Element { return d.focused }
