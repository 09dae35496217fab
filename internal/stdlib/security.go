package stdlib

// SecurityContext gates the capabilities a running program may exercise
// (spec.md §6: embedders construct a Runtime "sandboxed" or with explicit
// capability flags). Builtins that touch the outside world — I/O, the
// network — check this before acting and raise SecurityViolation otherwise.
type SecurityContext struct {
	AllowIO      bool
	AllowNetwork bool
}

// Sandboxed denies every external capability — the default for untrusted
// scripts (spec.md §6 "sandboxed(mode)").
func Sandboxed() *SecurityContext {
	return &SecurityContext{}
}

// Unrestricted allows every external capability — the default for a
// trusted embedding that only wants the language, not the sandbox.
func Unrestricted() *SecurityContext {
	return &SecurityContext{AllowIO: true, AllowNetwork: true}
}

func (s *SecurityContext) checkIO() bool {
	return s != nil && s.AllowIO
}

func (s *SecurityContext) checkNetwork() bool {
	return s != nil && s.AllowNetwork
}
