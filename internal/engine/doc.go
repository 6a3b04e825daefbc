// Package engine ties the line editor together: it owns the edit
// buffer, kill ring, history, keymaps, renderer, and key reader, and
// runs the dispatch loop behind ReadLine.
//
// All mutation happens on the goroutine that calls ReadLine; the
// reader goroutine never touches editor state. A panic inside a bound
// action is caught at the top of the read loop: the typed text
// survives, a transcript of recent keys is logged for reproduction,
// and the loop resumes. Cooperative cancellation (the context passed
// to ReadLine) returns Cancelled and keeps the partial line for the
// next call; the hard closing signal returns Exiting.
package engine
