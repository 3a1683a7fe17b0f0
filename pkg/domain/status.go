package domain

// ElementStatus is an introspection snapshot of one engine, consumed by the
// HTTP adapter and the CLI.
type ElementStatus struct {
	ID          string      `json:"id"`
	State       string      `json:"state"`
	Index       int         `json:"index"`
	States      []string    `json:"states"`
	Advancement Advancement `json:"advancement"`
}
