// Package responses implements the OpenResponses protocol layered over chat
// completions.
//
// The adapter translates both directions: an inbound Responses request
// (item-oriented input, flat tool definitions) becomes a chat-completions
// request the router can send upstream, and the upstream result is projected
// back into output items. For streaming, an Emitter consumes raw chat chunks
// and produces the typed event sequence of the Responses protocol
// (response.created through response.completed) with strictly increasing
// sequence numbers.
//
// The Store keeps recent responses so a follow-up request carrying
// previous_response_id can continue the conversation without the client
// resending history.
package responses
