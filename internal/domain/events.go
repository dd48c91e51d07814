package domain

// EventType discriminates inbound events.
type EventType string

const (
	// EventText is a plain text message from the user.
	EventText EventType = "text"

	// EventMedia is any non-text message (image, audio, document); only
	// the channel reference is carried, never the bytes.
	EventMedia EventType = "media"
)

// InboundEvent is the normalized inbound message the engine consumes. The
// webhook layer maps raw channel payloads into this shape.
type InboundEvent struct {
	Type EventType

	// Text is set for EventText.
	Text string

	// MediaRef is the channel-side reference (media id or link) for
	// EventMedia.
	MediaRef string
}

// TextReceived builds a text event.
func TextReceived(text string) InboundEvent {
	return InboundEvent{Type: EventText, Text: text}
}

// MediaReceived builds a media event.
func MediaReceived(ref string) InboundEvent {
	return InboundEvent{Type: EventMedia, MediaRef: ref}
}
