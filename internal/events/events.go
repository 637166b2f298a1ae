// Package events implements the plugin observation mechanism: per-operation
// events fired synchronously, in source evaluation order, so that analyzer
// plugins can build a deterministic picture of what the engine did without
// instrumenting the evaluator themselves.
package events

// Kind names one of the events the value and environment layers emit.
type Kind string

const (
	PropertyReferenced             Kind = "propertyReferenced"
	PropertySet                    Kind = "propertySet"
	PropertyDefined                Kind = "propertyDefined"
	PropertyDeleted                Kind = "propertyDeleted"
	UndeclaredGlobalVariableCreated Kind = "undeclaredGlobalVariableCreated"
	ErrorReported                   Kind = "errorReported"
	WarningReported                 Kind = "warningReported"
	EnteredFile                     Kind = "enteredFile"
)

// Event is one payload delivered to subscribers. Fields not relevant to a
// given Kind are left at their zero value.
type Event struct {
	Kind Kind

	// propertyReferenced / propertySet / propertyDefined / propertyDeleted
	Object     any // *runtime.ObjectValue; typed as any to avoid an import cycle
	Name       string
	Descriptor any // *runtime.PropertyDescriptor, nil if the property doesn't exist
	Value      any // runtime.Value

	// undeclaredGlobalVariableCreated
	// (Name above carries the variable name)

	// errorReported / warningReported
	ErrorKind  string
	Message    string
	StackTrace any // []errors.StackFrame

	// enteredFile
	Filename string

	// RunID correlates every event in one Engine.Run.
	RunID string
}

// Handler receives events as they fire.
type Handler func(Event)

// Emitter is a minimal synchronous pub/sub hub. Subscribers are invoked in
// registration order, on the goroutine that triggered the event — the
// engine is single-threaded cooperative, so no locking is
// needed.
type Emitter struct {
	handlers []Handler
}

// NewEmitter returns an Emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers h to receive every future event. It returns a token
// that Unsubscribe accepts to remove it again.
func (e *Emitter) Subscribe(h Handler) int {
	e.handlers = append(e.handlers, h)
	return len(e.handlers) - 1
}

// Unsubscribe removes the handler previously returned by Subscribe. It is a
// no-op for an already-removed or out-of-range token.
func (e *Emitter) Unsubscribe(token int) {
	if token < 0 || token >= len(e.handlers) {
		return
	}
	e.handlers[token] = nil
}

// Emit fires ev to every live subscriber, in registration order.
func (e *Emitter) Emit(ev Event) {
	for _, h := range e.handlers {
		if h != nil {
			h(ev)
		}
	}
}
