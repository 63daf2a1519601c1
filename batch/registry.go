package batch

// Registry declares which tables may be combined in a multi-table batch.
// Tables in the same group are batch-compatible; affinity bucketing is then
// scoped to the group rather than the individual table.
type Registry struct {
	groups  map[string][]string
	groupOf map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups:  make(map[string][]string),
		groupOf: make(map[string]string),
	}
}

// Register declares the tables of a compatibility group.
// This should be called during setup, before any batch is executed.
func (r *Registry) Register(group string, tables ...string) {
	r.groups[group] = append(r.groups[group], tables...)
	for _, t := range tables {
		r.groupOf[t] = group
	}
}

// GroupOf returns the compatibility group a table belongs to.
func (r *Registry) GroupOf(table string) (string, bool) {
	g, ok := r.groupOf[table]
	return g, ok
}

// Tables returns the tables registered under a group.
func (r *Registry) Tables(group string) []string {
	return r.groups[group]
}

// Compatible reports whether all tables belong to one registered group.
// A single table is always compatible with itself.
func (r *Registry) Compatible(tables []string) bool {
	if len(tables) <= 1 {
		return true
	}
	first, ok := r.groupOf[tables[0]]
	if !ok {
		return false
	}
	for _, t := range tables[1:] {
		if g, ok := r.groupOf[t]; !ok || g != first {
			return false
		}
	}
	return true
}
