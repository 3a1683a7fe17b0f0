// Package domain contains the core types of the shift engine: the trigger
// configuration model, the scroll range algebra, lifecycle events and the
// error taxonomy. It has no dependency on the runtime or on any adapter,
// so hosts and adapters can share these types freely.
package domain
