package page

const (
	ClassModal = "modal"
	ClassShow  = "show"
)

// ShowModal opens m the way the widget library does and fires EventShown.
func (l *Layer) ShowModal(m *Element) {
	m.AddClass(ClassShow)
	l.doc.Dispatch(m, &Event{Type: EventShown})
}

// HideModal closes m and fires EventHidden.
func (l *Layer) HideModal(m *Element) {
	m.RemoveClass(ClassShow)
	l.doc.Dispatch(m, &Event{Type: EventHidden})
}

// ResetFields empties every control under root, unchecks every box and
// clears all validation marks. Values the page was rendered with are not
// restored either.
func ResetFields(root *Element) {
	for _, f := range root.Find((*Element).IsField) {
		f.Value = ""
		f.Checked = false
	}
	ClearMarks(root)
}

func firstFocusable(root *Element) *Element {
	return root.First(func(n *Element) bool {
		if n.Disabled || !n.IsField() {
			return false
		}
		return n.Type != "hidden"
	})
}

func (l *Layer) bindModals() {
	for _, m := range l.doc.Root.ByClass(ClassModal) {
		m.On(EventShown, func(*Event) error {
			if f := firstFocusable(m); f != nil {
				l.doc.Focus(f)
			}
			return nil
		})
		m.On(EventHidden, func(*Event) error {
			ResetFields(m)
			return nil
		})
	}
}
