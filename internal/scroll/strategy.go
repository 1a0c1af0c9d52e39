package scroll

// Hooks customise how a view's position is saved and restored.
// A nil field falls back to the coordinator's default.
type Hooks struct {
	Save      func(key ViewKey, offset int)
	Restore   func(key ViewKey) (offset int, ok bool)
	AfterSwap func(key ViewKey)
}

// Strategy applies Hooks to the views Match accepts.
type Strategy struct {
	Name  string
	Match func(ViewKey) bool
	Hooks Hooks
}

// Strategies is an ordered list; the first match wins.
type Strategies struct {
	list []Strategy
}

// Register appends s, replacing an earlier strategy with the same name in
// place.
func (s *Strategies) Register(st Strategy) {
	for i := range s.list {
		if st.Name != "" && s.list[i].Name == st.Name {
			s.list[i] = st
			return
		}
	}
	s.list = append(s.list, st)
}

// Len returns the number of registered strategies.
func (s *Strategies) Len() int {
	return len(s.list)
}

// Resolve returns the hooks for key, filling gaps from def. The name is
// empty when no strategy matched.
func (s *Strategies) Resolve(key ViewKey, def Hooks) (string, Hooks) {
	for _, st := range s.list {
		if st.Match == nil || !st.Match(key) {
			continue
		}
		h := st.Hooks
		if h.Save == nil {
			h.Save = def.Save
		}
		if h.Restore == nil {
			h.Restore = def.Restore
		}
		if h.AfterSwap == nil {
			h.AfterSwap = def.AfterSwap
		}
		return st.Name, h
	}
	return "", def
}
