// Package ports defines the interfaces between the shift core and its
// collaborators: the host environment that owns the element tree, and the
// cascade bus that carries state-change notifications between engines.
package ports
