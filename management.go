package uamqp

// ManagementOpenResult is the outcome of opening a Management node.
type ManagementOpenResult uint8

// ManagementOpenResult values
const (
	ManagementOpenOK ManagementOpenResult = iota
	ManagementOpenError
	ManagementOpenCancelled
)

func (r ManagementOpenResult) String() string {
	switch r {
	case ManagementOpenOK:
		return "ok"
	case ManagementOpenError:
		return "error"
	case ManagementOpenCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ManagementExecuteResult is the outcome of a management operation.
type ManagementExecuteResult uint8

// ManagementExecuteResult values
const (
	ManagementExecuteOK ManagementExecuteResult = iota
	ManagementExecuteError
	ManagementExecuteFailedBadStatus
	ManagementExecuteInstanceClosed
)

func (r ManagementExecuteResult) String() string {
	switch r {
	case ManagementExecuteOK:
		return "ok"
	case ManagementExecuteError:
		return "error"
	case ManagementExecuteFailedBadStatus:
		return "failed bad status"
	case ManagementExecuteInstanceClosed:
		return "instance closed"
	}
	return "unknown"
}

// ExecuteOperationCompleteFunc receives the result of a management
// operation along with the status code and description reported by the
// node, and the response message if any.
type ExecuteOperationCompleteFunc func(result ManagementExecuteResult, statusCode uint32, statusDescription string, response *Message)

// Management is a request/response client for an AMQP management node.
// Callbacks are delivered on the caller's event loop.
type Management interface {
	// OpenAsync starts opening the node. onOpenComplete reports the
	// outcome; onError reports failures after the open has completed.
	OpenAsync(onOpenComplete func(ManagementOpenResult), onError func()) error
	Close() error

	// ExecuteOperationAsync sends msg as a request for operation on type.
	// Requests made before the open completes are buffered.
	ExecuteOperationAsync(operation, typ string, locales []string, msg *Message, onComplete ExecuteOperationCompleteFunc) (*AsyncOperation, error)

	SetTrace(on bool)
	SetOverrideStatusCodeKeyName(name string) error
	SetOverrideStatusDescriptionKeyName(name string) error
	Destroy()
}

// ManagementFactory creates Management clients bound to a node, usually
// on an AMQP session.
type ManagementFactory interface {
	NewManagement(node string) (Management, error)
}
