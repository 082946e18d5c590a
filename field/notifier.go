package field

import (
	"github.com/pkg/errors"
)

// Notifier implements the update batching and observer half of Field.
// Codecs embed it and call NotifyBlockChanged / NotifyDimensionChanged
// after every mutation.
type Notifier struct {
	updates          int
	blockPending     bool
	dimensionPending bool

	blockHandlers     []func()
	dimensionHandlers []func()
}

func (n *Notifier) OnBlockChanged(fn func()) {
	n.blockHandlers = append(n.blockHandlers, fn)
}

func (n *Notifier) OnDimensionChanged(fn func()) {
	n.dimensionHandlers = append(n.dimensionHandlers, fn)
}

// BeginUpdate starts (or nests) a batch. Notifications raised inside are
// delivered at most once each by the matching outermost EndUpdate.
func (n *Notifier) BeginUpdate() {
	n.updates++
}

// EndUpdate closes a batch. Calling it without a matching BeginUpdate is a
// precondition violation and leaves the notifier untouched.
func (n *Notifier) EndUpdate() error {
	if n.updates == 0 {
		return errors.Wrap(ErrPreconditionViolation, "EndUpdate without BeginUpdate")
	}
	n.updates--
	if n.updates > 0 {
		return nil
	}

	block, dimension := n.blockPending, n.dimensionPending
	n.blockPending, n.dimensionPending = false, false
	if block {
		n.fire(n.blockHandlers)
	}
	if dimension {
		n.fire(n.dimensionHandlers)
	}
	return nil
}

// Updating reports whether a batch is open.
func (n *Notifier) Updating() bool {
	return n.updates > 0
}

func (n *Notifier) NotifyBlockChanged() {
	if n.updates > 0 {
		n.blockPending = true
	} else {
		n.fire(n.blockHandlers)
	}
}

func (n *Notifier) NotifyDimensionChanged() {
	if n.updates > 0 {
		n.dimensionPending = true
	} else {
		n.fire(n.dimensionHandlers)
	}
}

func (n *Notifier) fire(handlers []func()) {
	for _, fn := range handlers {
		fn()
	}
}
