package uamqp

import (
	"github.com/sirupsen/logrus"
)

const (
	cbsNode = "$cbs"

	cbsStatusCodeKey        = "status-code"
	cbsStatusDescriptionKey = "status-description"
	cbsNameKey              = "name"
)

// State is the lifecycle state of a CBS instance.
type State uint8

// CBS states
const (
	StateIdle State = iota
	StateOpening
	StateOpen
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateError:
		return "error"
	}
	return "unknown"
}

// OpenResult is passed to the open complete callback of OpenAsync.
type OpenResult uint8

// OpenResult values
const (
	OpenOK OpenResult = iota
	OpenError
	OpenCancelled
)

func (r OpenResult) String() string {
	switch r {
	case OpenOK:
		return "ok"
	case OpenError:
		return "error"
	case OpenCancelled:
		return "cancelled"
	}
	return "unknown"
}

// OperationResult is the outcome of a put-token or delete-token request.
type OperationResult uint8

// OperationResult values
const (
	OperationOK OperationResult = iota
	OperationCBSError
	OperationFailed
	OperationInstanceClosed
)

func (r OperationResult) String() string {
	switch r {
	case OperationOK:
		return "ok"
	case OperationCBSError:
		return "cbs error"
	case OperationFailed:
		return "operation failed"
	case OperationInstanceClosed:
		return "instance closed"
	}
	return "unknown"
}

func operationResult(r ManagementExecuteResult) OperationResult {
	switch r {
	case ManagementExecuteOK:
		return OperationOK
	case ManagementExecuteFailedBadStatus:
		return OperationFailed
	case ManagementExecuteInstanceClosed:
		return OperationInstanceClosed
	}
	return OperationCBSError
}

// OperationCompleteFunc receives the outcome of a put-token or
// delete-token request. statusCode and statusDescription are reported
// by the CBS node.
type OperationCompleteFunc func(result OperationResult, statusCode uint32, statusDescription string)

// CBSOption is a function for configuring a CBS.
type CBSOption func(*CBS) error

// CBSLogger sets the logger used by the CBS instance.
func CBSLogger(l *logrus.Entry) CBSOption {
	return func(c *CBS) error {
		if l == nil {
			return errorWrapf(ErrInvalidArgument, "nil logger")
		}
		c.log = l
		return nil
	}
}

// CBS implements claims-based security: it puts and deletes tokens on
// the $cbs management node of a connection.
//
// A CBS is driven from a single event loop. Callbacks from the
// Management client must be delivered on the same goroutine that calls
// CBS methods.
type CBS struct {
	management Management
	state      State
	pending    operationRegistry

	onOpenComplete func(OpenResult)
	onError        func()

	log       *logrus.Entry
	trace     bool
	destroyed bool
}

// NewCBS creates a CBS whose management client is created by session
// for the $cbs node.
func NewCBS(session ManagementFactory, opts ...CBSOption) (*CBS, error) {
	if session == nil {
		return nil, errorWrapf(ErrInvalidArgument, "nil session")
	}

	c := &CBS{
		log: logger().WithField("component", "cbs"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	m, err := session.NewManagement(cbsNode)
	if err != nil {
		return nil, errorWrapf(err, "creating management client for %s", cbsNode)
	}
	if m == nil {
		return nil, errorErrorf("no management client for %s", cbsNode)
	}
	if err = m.SetOverrideStatusCodeKeyName(cbsStatusCodeKey); err != nil {
		m.Destroy()
		return nil, errorWrapf(err, "setting status code key name")
	}
	if err = m.SetOverrideStatusDescriptionKeyName(cbsStatusDescriptionKey); err != nil {
		m.Destroy()
		return nil, errorWrapf(err, "setting status description key name")
	}

	c.management = m
	return c, nil
}

func (c *CBS) check() error {
	if c == nil {
		return errorWrapf(ErrInvalidArgument, "nil cbs")
	}
	if c.destroyed {
		return errorWrapf(ErrDestroyed, "cbs")
	}
	return nil
}

// State returns the current lifecycle state.
func (c *CBS) State() State {
	return c.state
}

func (c *CBS) setState(s State) {
	c.tracef("state %s -> %s", c.state, s)
	c.state = s
}

func (c *CBS) tracef(format string, args ...interface{}) {
	if c.trace {
		c.log.Infof(format, args...)
		return
	}
	c.log.Debugf(format, args...)
}

// OpenAsync starts opening the CBS node. onOpenComplete is called once
// with the outcome. onError is called if the node fails after the open
// has completed.
//
// A CBS that failed to open or was closed may be opened again.
func (c *CBS) OpenAsync(onOpenComplete func(OpenResult), onError func()) error {
	if err := c.check(); err != nil {
		return err
	}
	if onOpenComplete == nil || onError == nil {
		return errorWrapf(ErrInvalidArgument, "nil callback")
	}
	if c.state != StateIdle {
		return errorWrapf(ErrInvalidState, "cbs is %s", c.state)
	}

	c.onOpenComplete = onOpenComplete
	c.onError = onError
	c.setState(StateOpening)

	if err := c.management.OpenAsync(c.onManagementOpenComplete, c.onManagementError); err != nil {
		c.setState(StateIdle)
		c.onOpenComplete, c.onError = nil, nil
		return errorWrapf(err, "opening management client")
	}
	return nil
}

func (c *CBS) onManagementOpenComplete(result ManagementOpenResult) {
	if c.destroyed {
		return
	}

	switch c.state {
	case StateOpening:
		if result == ManagementOpenOK {
			c.setState(StateOpen)
			c.onOpenComplete(OpenOK)
			return
		}

		if err := c.management.Close(); err != nil {
			c.log.WithError(err).Error("closing management client after failed open")
		}
		onOpenComplete := c.onOpenComplete
		c.setState(StateIdle)
		if result == ManagementOpenCancelled {
			onOpenComplete(OpenCancelled)
		} else {
			onOpenComplete(OpenError)
		}

	case StateOpen, StateError:
		c.log.WithField("result", result).Error("unexpected open complete from management client")
		c.onError()

	default:
		c.tracef("ignoring management open complete (%s) while %s", result, c.state)
	}
}

func (c *CBS) onManagementError() {
	if c.destroyed {
		return
	}

	switch c.state {
	case StateOpening:
		if err := c.management.Close(); err != nil {
			c.log.WithError(err).Error("closing management client after error")
		}
		onOpenComplete := c.onOpenComplete
		c.setState(StateIdle)
		onOpenComplete(OpenError)

	case StateOpen:
		c.setState(StateError)
		c.onError()

	default:
		c.tracef("ignoring management error while %s", c.state)
	}
}

// Close closes the CBS node. Closing while the open is in progress
// cancels it and the open complete callback receives OpenCancelled.
// Close fails if the CBS is not open or opening.
func (c *CBS) Close() error {
	if err := c.check(); err != nil {
		return err
	}
	return c.close()
}

func (c *CBS) close() error {
	if c.state == StateIdle {
		return errorWrapf(ErrInvalidState, "cbs is not open")
	}

	if err := c.management.Close(); err != nil {
		return errorWrapf(err, "closing management client")
	}

	wasOpening := c.state == StateOpening
	onOpenComplete := c.onOpenComplete
	c.setState(StateIdle)
	c.onOpenComplete, c.onError = nil, nil

	if wasOpening {
		onOpenComplete(OpenCancelled)
	}
	return nil
}

// PutTokenAsync puts token for audience. The request may be issued while
// the open is still in progress. onComplete is not called if the
// returned operation is cancelled.
func (c *CBS) PutTokenAsync(tokenType, audience, token string, onComplete OperationCompleteFunc) (*AsyncOperation, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errorWrapf(ErrInvalidArgument, "empty token")
	}
	return c.execute(cbsPutToken, tokenType, audience, token, onComplete)
}

// DeleteTokenAsync deletes the token for audience. It otherwise behaves
// like PutTokenAsync.
func (c *CBS) DeleteTokenAsync(tokenType, audience string, onComplete OperationCompleteFunc) (*AsyncOperation, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.execute(cbsDeleteToken, tokenType, audience, nil, onComplete)
}

func (c *CBS) execute(kind cbsOperationKind, tokenType, audience string, value interface{}, onComplete OperationCompleteFunc) (*AsyncOperation, error) {
	switch {
	case tokenType == "":
		return nil, errorWrapf(ErrInvalidArgument, "empty token type")
	case audience == "":
		return nil, errorWrapf(ErrInvalidArgument, "empty audience")
	case onComplete == nil:
		return nil, errorWrapf(ErrInvalidArgument, "nil complete callback")
	}
	if c.state != StateOpening && c.state != StateOpen {
		return nil, errorWrapf(ErrInvalidState, "%s while cbs is %s", kind, c.state)
	}

	op := &cbsOperation{
		kind:       kind,
		onComplete: onComplete,
	}
	op.handle = NewAsyncOperation(func() { c.cancelOperation(op) })
	c.pending.add(op)

	msg := newCBSMessage(audience, value)
	mgmtOp, err := c.management.ExecuteOperationAsync(kind.String(), tokenType, nil, msg,
		func(result ManagementExecuteResult, statusCode uint32, statusDescription string, _ *Message) {
			c.onOperationComplete(op, result, statusCode, statusDescription)
		})
	if err == nil && mgmtOp == nil {
		err = errorNew("management client returned no operation")
	}
	if err != nil {
		c.pending.remove(op)
		return nil, errorWrapf(err, "starting %s", kind)
	}
	op.mgmtOp = mgmtOp

	c.log.WithFields(logrus.Fields{
		"operation": kind.String(),
		"type":      tokenType,
		"audience":  audience,
	}).Debug("cbs operation started")
	return op.handle, nil
}

// cancelOperation runs when the caller cancels op.handle.
func (c *CBS) cancelOperation(op *cbsOperation) {
	if op.mgmtOp != nil {
		if err := op.mgmtOp.Cancel(); err != nil {
			c.log.WithError(err).Debug("cancelling management operation")
		}
	}
	if c.pending.remove(op) {
		c.tracef("%s cancelled", op.kind)
	}
}

func (c *CBS) onOperationComplete(op *cbsOperation, result ManagementExecuteResult, statusCode uint32, statusDescription string) {
	if c.destroyed {
		return
	}
	if op.handle.State() != AsyncPending || !c.pending.contains(op) {
		c.tracef("%s completed after it was removed", op.kind)
		return
	}

	r := operationResult(result)
	c.pending.remove(op)
	op.handle.Complete()
	cbsOperations.WithLabelValues(op.kind.String(), r.String()).Inc()

	c.log.WithFields(logrus.Fields{
		"operation":          op.kind.String(),
		"result":             r.String(),
		"status_code":        statusCode,
		"status_description": statusDescription,
	}).Debug("cbs operation complete")

	op.onComplete(r, statusCode, statusDescription)
}

// SetTrace turns on protocol tracing for the management client and
// logs CBS state changes at info level.
func (c *CBS) SetTrace(on bool) error {
	if err := c.check(); err != nil {
		return err
	}
	c.trace = on
	c.management.SetTrace(on)
	return nil
}

// Destroy closes the CBS if needed, completes every pending operation
// with OperationInstanceClosed in submission order and releases the
// management client. Destroy on a nil or destroyed CBS does nothing.
func (c *CBS) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true

	if c.state != StateIdle {
		if err := c.close(); err != nil {
			c.log.WithError(err).Error("closing cbs during destroy")
		}
	}

	for op := c.pending.head(); op != nil; op = c.pending.head() {
		c.pending.remove(op)
		op.handle.Complete()
		cbsOperations.WithLabelValues(op.kind.String(), OperationInstanceClosed.String()).Inc()
		op.onComplete(OperationInstanceClosed, 0, "")
	}

	c.management.Destroy()
}
