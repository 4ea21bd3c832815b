// Package errors provides structured, actionable error values for hookscope.
//
// Every error raised by the render-scope core carries a code that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A remediation hint
//
// # Error Categories
//
//   - usage: a hook or context operation called the wrong way (outside a
//     render pass, in a changed order, re-entering a host)
//   - setup: the process is missing a collaborator (no reactive provider)
//   - context: a context was consumed with no provided value and no default
//   - internal: an invariant of the core itself was violated
//   - config: configuration file or environment errors
//
// # Usage
//
//	err := errors.New("H001").
//	    WithOp("UseState").
//	    WithSuggestion("Call hooks only inside hooks.Establish")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR H001: No active render
//	//
//	//   in UseState
//	//
//	//   A hook or context operation ran while no host was current.
//	//
//	//   Hint: Call hooks only inside hooks.Establish
package errors
