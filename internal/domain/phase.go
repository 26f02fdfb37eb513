package domain

// Phase is the settled state of a widget operation as reported by the
// server. The browser adds its own idle and loading states around it.
type Phase string

const (
	PhaseReady        Phase = "ready"
	PhaseError        Phase = "error"
	PhaseUnconfigured Phase = "unconfigured"
)
