package generator

import (
	"log/slog"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// getCodec lazily loads the cl100k codec shared by all generations.
func getCodec() tokenizer.Codec {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	return codec
}

func countTokens(text string) int {
	c := getCodec()
	if c == nil {
		// Without a codec, approximate with the usual 4 bytes per token.
		return len(text) / 4
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

// trimToBudget enforces the prompt token budget by truncating the longest
// field values first. Field order and names are always preserved.
func (g *HTTPGenerator) trimToBudget(in Input) Input {
	if g.maxInputTokens <= 0 {
		return in
	}

	total := 0
	counts := make([]int, len(in.Fields))
	for i, f := range in.Fields {
		counts[i] = countTokens(f.Name + ": " + f.Value)
		total += counts[i]
	}

	for total > g.maxInputTokens {
		longest := 0
		for i := range counts {
			if counts[i] > counts[longest] {
				longest = i
			}
		}
		if counts[longest] <= 8 {
			break
		}

		f := &in.Fields[longest]
		runes := []rune(f.Value)
		f.Value = string(runes[:len(runes)/2])
		newCount := countTokens(f.Name + ": " + f.Value)
		total -= counts[longest] - newCount
		counts[longest] = newCount

		g.logger.Warn("truncated field to fit token budget",
			slog.String("session_id", in.SessionID),
			slog.String("field", f.Name),
			slog.Int("budget", g.maxInputTokens),
		)
	}
	return in
}
