// Package message defines the conversation messages exchanged with a provider
// and the request/result shapes that form the wire contract for transports.
package message
