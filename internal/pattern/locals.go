package pattern

// LocalID identifies a variable bound by a match statement. Every site that
// binds the same name in one match statement shares its LocalID.
type LocalID int

// Target is one binding site.
type Target struct {
	Pos
	Name string
	ID   LocalID
}

// Locals allocates LocalIDs for one match statement, keyed by name.
type Locals struct {
	ids   map[string]LocalID
	names []string
}

// NewLocals creates an empty table.
func NewLocals() *Locals {
	return &Locals{ids: make(map[string]LocalID)}
}

// Declare returns a new binding site for name, reusing the name's LocalID.
func (l *Locals) Declare(name string, pos Pos) *Target {
	id, ok := l.ids[name]
	if !ok {
		id = LocalID(len(l.names))
		l.ids[name] = id
		l.names = append(l.names, name)
	}
	return &Target{Pos: pos, Name: name, ID: id}
}

// Lookup returns the LocalID of a declared name.
func (l *Locals) Lookup(name string) (LocalID, bool) {
	id, ok := l.ids[name]
	return id, ok
}

// Name returns the declared name of id.
func (l *Locals) Name(id LocalID) string {
	if int(id) < 0 || int(id) >= len(l.names) {
		return ""
	}
	return l.names[id]
}

// Len returns how many names were declared.
func (l *Locals) Len() int {
	return len(l.names)
}

// Names returns the declared names in LocalID order.
func (l *Locals) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}
