// Package goid identifies the calling goroutine.
//
// The reactive core, the hook scope and the event loop all keep state that
// belongs to whichever goroutine is rendering. They key it by the id
// returned here.
package goid

import "github.com/joeycumines/goroutineid"

// Current returns the id of the calling goroutine.
func Current() uint64 {
	return uint64(goroutineid.Get())
}
