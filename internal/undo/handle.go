package undo

// Handle holds an ordered list of restore operations.
//
// Revert runs them in list order. Restore operations are expected to be
// plain assignments, so calling Revert twice simply re-applies the same
// values. The zero value and a nil *Handle are valid and revert nothing.
type Handle struct {
	steps []func()
}

// New wraps a single restore operation. A nil fn yields an empty Handle.
func New(fn func()) *Handle {
	if fn == nil {
		return &Handle{}
	}
	return &Handle{steps: []func(){fn}}
}

// Compose returns a Handle whose Revert runs the restore operations of
// every given handle, in argument order. Nil handles are skipped.
//
// The steps are copied, so later changes to the inputs do not leak into
// the composed handle.
func Compose(handles ...*Handle) *Handle {
	composed := &Handle{}
	for _, h := range handles {
		if h == nil {
			continue
		}
		composed.steps = append(composed.steps, h.steps...)
	}
	return composed
}

// Revert runs every restore operation in order.
func (h *Handle) Revert() {
	if h == nil {
		return
	}
	for _, step := range h.steps {
		step()
	}
}

// Len reports the number of restore operations held by the handle.
func (h *Handle) Len() int {
	if h == nil {
		return 0
	}
	return len(h.steps)
}
