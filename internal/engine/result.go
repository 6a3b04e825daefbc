package engine

// Result is what one ReadLine call produced. Exactly three things can
// happen: the user accepted a line, the read was cancelled, or the
// engine is shutting down. The interface is sealed so a switch over
// these three covers every case.
type Result interface {
	isResult()
}

// Accepted carries a completed line.
type Accepted struct {
	Line string
}

// Cancelled reports cooperative cancellation. The partially typed
// line is preserved for the next ReadLine call.
type Cancelled struct{}

// Exiting reports the hard shutdown signal: stop entirely.
type Exiting struct{}

func (Accepted) isResult()  {}
func (Cancelled) isResult() {}
func (Exiting) isResult()   {}
