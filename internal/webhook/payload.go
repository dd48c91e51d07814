package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// notification is the Graph-style webhook envelope. Only the fields the
// engine needs are mapped; everything else is ignored.
type notification struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
	Image    mediaRef `json:"image"`
	Audio    mediaRef `json:"audio"`
	Video    mediaRef `json:"video"`
	Document mediaRef `json:"document"`
}

type mediaRef struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

func (m mediaRef) ref() string {
	if m.Link != "" {
		return m.Link
	}
	return m.ID
}

// InboundMessage is one normalized message: the sender's channel address
// plus the typed event the engine consumes.
type InboundMessage struct {
	SenderID string
	Event    domain.InboundEvent
}

// Normalize extracts the inbound messages from a raw webhook body.
// Status-only notifications yield an empty slice, not an error.
func Normalize(body []byte) ([]InboundMessage, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}

	var out []InboundMessage
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" {
					continue
				}
				ev, ok := normalizeMessage(msg)
				if !ok {
					continue
				}
				out = append(out, InboundMessage{SenderID: msg.From, Event: ev})
			}
		}
	}
	return out, nil
}

func normalizeMessage(msg inboundMessage) (domain.InboundEvent, bool) {
	switch msg.Type {
	case "text":
		return domain.TextReceived(msg.Text.Body), true
	case "image":
		return domain.MediaReceived(msg.Image.ref()), true
	case "audio":
		return domain.MediaReceived(msg.Audio.ref()), true
	case "video":
		return domain.MediaReceived(msg.Video.ref()), true
	case "document":
		return domain.MediaReceived(msg.Document.ref()), true
	default:
		// Reactions, stickers, system notifications: ignored.
		return domain.InboundEvent{}, false
	}
}
