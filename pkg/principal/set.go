package principal

// Set is a collection of principals keyed by name. Because the engine's
// equality is name-only, adding two variants with the same name collapses
// them into one entry; the first one added wins.
type Set map[string]Principal

// NewSet creates a set from the given principals.
func NewSet(ps ...Principal) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

// Add inserts p unless a principal with the same name is already present.
func (s Set) Add(p Principal) {
	if p == nil {
		return
	}
	if _, ok := s[p.Name()]; !ok {
		s[p.Name()] = p
	}
}

// Contains reports whether a principal with p's name is in the set.
func (s Set) Contains(p Principal) bool {
	if p == nil {
		return false
	}
	return s.ContainsName(p.Name())
}

// ContainsName reports whether a principal with the given name is in the set.
func (s Set) ContainsName(name string) bool {
	_, ok := s[name]
	return ok
}

// Members returns the principals in the set. Order is unspecified.
func (s Set) Members() []Principal {
	out := make([]Principal, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	return out
}

// Names returns the names in the set. Order is unspecified.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	return out
}
