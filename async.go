package uamqp

// AsyncState is the state of an AsyncOperation.
type AsyncState uint8

// AsyncOperation states
const (
	AsyncPending AsyncState = iota
	AsyncCompleted
	AsyncCancelled
)

func (s AsyncState) String() string {
	switch s {
	case AsyncPending:
		return "pending"
	case AsyncCompleted:
		return "completed"
	case AsyncCancelled:
		return "cancelled"
	}
	return "unknown"
}

// AsyncOperation is a handle to an operation whose result is delivered
// through a callback. It can be cancelled until it completes; completion
// and cancellation are mutually exclusive.
//
// AsyncOperation is not safe for concurrent use.
type AsyncOperation struct {
	state    AsyncState
	onCancel func()
}

// NewAsyncOperation returns a pending operation. onCancel is run by the
// first successful Cancel and may be nil.
func NewAsyncOperation(onCancel func()) *AsyncOperation {
	return &AsyncOperation{onCancel: onCancel}
}

// State returns the current state of the operation.
func (op *AsyncOperation) State() AsyncState {
	return op.state
}

// Cancel cancels a pending operation. The completion callback of a
// cancelled operation is not called. Cancel fails if the operation has
// already completed or been cancelled.
func (op *AsyncOperation) Cancel() error {
	if op == nil {
		return errorWrapf(ErrInvalidArgument, "nil async operation")
	}
	if op.state != AsyncPending {
		return errorWrapf(ErrInvalidState, "async operation is %s", op.state)
	}
	op.state = AsyncCancelled
	if op.onCancel != nil {
		op.onCancel()
		op.onCancel = nil
	}
	return nil
}

// Complete marks a pending operation completed and reports whether it
// was pending.
func (op *AsyncOperation) Complete() bool {
	if op == nil || op.state != AsyncPending {
		return false
	}
	op.state = AsyncCompleted
	op.onCancel = nil
	return true
}
