package uamqp

type cbsOperationKind uint8

const (
	cbsPutToken cbsOperationKind = iota
	cbsDeleteToken
)

// String returns the management operation name.
func (k cbsOperationKind) String() string {
	switch k {
	case cbsPutToken:
		return "put-token"
	case cbsDeleteToken:
		return "delete-token"
	}
	return "unknown"
}

// cbsOperation is a put-token or delete-token request awaiting its
// management response.
type cbsOperation struct {
	kind       cbsOperationKind
	onComplete OperationCompleteFunc

	// handle is returned to the caller; mgmtOp is the request in flight
	// on the management node.
	handle *AsyncOperation
	mgmtOp *AsyncOperation
}

// operationRegistry holds pending operations in submission order.
type operationRegistry struct {
	ops []*cbsOperation
}

func (r *operationRegistry) add(op *cbsOperation) {
	r.ops = append(r.ops, op)
	cbsPendingOperations.Inc()
}

// remove deletes op and reports whether it was present.
func (r *operationRegistry) remove(op *cbsOperation) bool {
	for i, o := range r.ops {
		if o != op {
			continue
		}
		copy(r.ops[i:], r.ops[i+1:])
		r.ops[len(r.ops)-1] = nil
		r.ops = r.ops[:len(r.ops)-1]
		cbsPendingOperations.Dec()
		return true
	}
	return false
}

func (r *operationRegistry) contains(op *cbsOperation) bool {
	for _, o := range r.ops {
		if o == op {
			return true
		}
	}
	return false
}

// head returns the oldest pending operation, or nil.
func (r *operationRegistry) head() *cbsOperation {
	if len(r.ops) == 0 {
		return nil
	}
	return r.ops[0]
}

func (r *operationRegistry) len() int {
	return len(r.ops)
}
