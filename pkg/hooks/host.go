package hooks

import (
	"runtime"
	"strconv"
	"sync/atomic"
	"unsafe"
	"weak"
)

// Host is a ready-made host identity for headless rendering. Any pointer to
// a non-zero-size value works as a host; Host only adds an id and a label
// for logs.
type Host struct {
	id    uint64
	label string
}

var hostIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&hostIDCounter, 1)
}

// NewHost returns a fresh, empty host identity.
func NewHost() *Host {
	return &Host{id: nextID()}
}

// NewNamedHost returns a fresh host carrying a label.
func NewNamedHost(label string) *Host {
	return &Host{id: nextID(), label: label}
}

// ID returns the host's unique id.
func (h *Host) ID() uint64 { return h.id }

// String returns the label, or "host-<id>".
func (h *Host) String() string {
	if h.label != "" {
		return h.label
	}
	return "host-" + strconv.FormatUint(h.id, 10)
}

// hostKey identifies a host without keeping it reachable. Zero-size hosts
// are rejected: distinct allocations of them may share an address.
func hostKey[H any](op string, host *H) any {
	if unsafe.Sizeof(*host) == 0 {
		panic(newError("H007", op, ErrZeroSizeHost))
	}
	return weak.Make(host)
}

// hostState is the per-host storage: slots, slot cursor, context stack,
// effect queue and recorded cleanups. It never references the host itself.
type hostState struct {
	id  uint64
	key any

	slots  []any
	cursor int

	frames []contextFrame

	effects  []*effectRecord
	cleanups []Cleanup

	// Hook order validation, used when the runtime checks order.
	order    []HookKind
	orderIdx int
	locked   bool

	disposed  atomic.Bool
	gcCleanup runtime.Cleanup
}

// beginPass resets per-pass bookkeeping at the start of a top-level pass.
func (st *hostState) beginPass() {
	st.cursor = 0
	st.frames = nil
	st.orderIdx = 0
	if !st.locked {
		st.order = st.order[:0]
	}
}
