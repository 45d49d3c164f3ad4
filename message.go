package uamqp

// Message is the request and response carrier exchanged with a
// Management node. Encoding to and from the AMQP type system is the
// business of the Management implementation.
type Message struct {
	// Application properties of the message.
	ApplicationProperties map[string]interface{}

	// Value is carried in the amqp-value body section. Nil means the
	// message has no body.
	Value interface{}
}

// newCBSMessage builds a CBS request naming audience, with value as the
// body when non-nil.
func newCBSMessage(audience string, value interface{}) *Message {
	return &Message{
		ApplicationProperties: map[string]interface{}{
			cbsNameKey: audience,
		},
		Value: value,
	}
}
