package scroll

// FollowButton is the control that jumps the viewport to its edge.
type FollowButton interface {
	ID() string
	Geometry() ButtonGeometry
}

// ClassTarget is a button shown and hidden by toggling a class.
type ClassTarget interface {
	SetClass(name string, on bool)
}

// VisibilityTarget is a component that manages its own visibility.
type VisibilityTarget interface {
	SetVisible(visible bool)
}

// HiddenClass is the class SimpleToggle sets on hidden buttons.
const HiddenClass = "hidden"

// Toggle shows or hides the bound follow button.
type Toggle interface {
	SetVisible(visible bool)
	Visible() bool
}

// BindToggle picks the toggle variant for b. The choice is made once, when
// the button is bound.
func BindToggle(b FollowButton) Toggle {
	switch t := b.(type) {
	case VisibilityTarget:
		return &DelegatingToggle{target: t}
	case ClassTarget:
		return &SimpleToggle{target: t}
	default:
		return &SimpleToggle{}
	}
}

// SimpleToggle flips HiddenClass on its target.
type SimpleToggle struct {
	target  ClassTarget
	visible bool
	applied bool
}

func (t *SimpleToggle) SetVisible(v bool) {
	if t.applied && t.visible == v {
		return
	}
	t.visible = v
	t.applied = true
	if t.target != nil {
		t.target.SetClass(HiddenClass, !v)
	}
}

func (t *SimpleToggle) Visible() bool { return t.visible }

// DelegatingToggle forwards to the component's own SetVisible.
type DelegatingToggle struct {
	target  VisibilityTarget
	visible bool
	applied bool
}

func (t *DelegatingToggle) SetVisible(v bool) {
	if t.applied && t.visible == v {
		return
	}
	t.visible = v
	t.applied = true
	t.target.SetVisible(v)
}

func (t *DelegatingToggle) Visible() bool { return t.visible }
