package flow

// rawPrefix namespaces raw node outputs away from user-declared variable
// names inside the shared mapping.
const rawPrefix = "__raw__:"

// Context is the run-scoped variable namespace threading values between
// nodes. It is owned by a single run and never shared. Keys are write-once:
// nodes never re-execute, so a value set first wins.
type Context struct {
	vars map[string]string
}

// NewContext creates a context seeded with the initial inputs.
func NewContext(inputs map[string]string) *Context {
	vars := make(map[string]string, len(inputs))
	for k, v := range inputs {
		vars[k] = v
	}
	return &Context{vars: vars}
}

// Get returns the value of a named variable.
func (c *Context) Get(name string) (string, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Has reports whether a named variable is present.
func (c *Context) Has(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// Set publishes a named variable. Existing values are kept.
func (c *Context) Set(name, value string) {
	if _, ok := c.vars[name]; ok {
		return
	}
	c.vars[name] = value
}

// SetRaw publishes a node's raw output, keyed by node identity.
func (c *Context) SetRaw(nodeID, value string) {
	c.Set(rawPrefix+nodeID, value)
}

// GetRaw returns a node's raw output.
func (c *Context) GetRaw(nodeID string) (string, bool) {
	return c.Get(rawPrefix + nodeID)
}
