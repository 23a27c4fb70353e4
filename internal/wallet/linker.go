// Package wallet tracks which receipts have a wallet link request in
// flight. Flags are independent per receipt, and whatever the outcome
// of the call, Finish drops the flag.
package wallet

// Linker belongs to the UI update loop.
type Linker struct {
	inFlight map[string]bool
}

func NewLinker() *Linker {
	return &Linker{inFlight: make(map[string]bool)}
}

// Begin marks the receipt as linking. It reports false when the id is
// empty or a link for it is already running, in which case the caller
// must not start another request.
func (l *Linker) Begin(id string) bool {
	if id == "" || l.inFlight[id] {
		return false
	}

	l.inFlight[id] = true

	return true
}

// Finish drops the receipt's flag regardless of how the call ended.
// Finishing an id that was never begun is harmless.
func (l *Linker) Finish(id string) {
	delete(l.inFlight, id)
}

// InFlight reports whether the receipt has a link request running.
func (l *Linker) InFlight(id string) bool {
	return l.inFlight[id]
}

// Active is the number of link requests currently running.
func (l *Linker) Active() int {
	return len(l.inFlight)
}

// Reset drops every flag.
func (l *Linker) Reset() {
	clear(l.inFlight)
}
