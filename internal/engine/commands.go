package engine

import "strings"

// Command is a recognized post-delivery command.
type Command string

const (
	CommandHelp       Command = "help"
	CommandInspire    Command = "inspire"
	CommandRegenerate Command = "regenerate"
	CommandEnd        Command = "end"
)

// exactCommands maps normalized phrases to commands. Exact matches take
// precedence over keyword containment.
var exactCommands = map[string]Command{
	"ajuda":      CommandHelp,
	"menu":       CommandHelp,
	"help":       CommandHelp,
	"inspirar":   CommandInspire,
	"inspiracao": CommandInspire,
	"inspire":    CommandInspire,
	"regenerar":  CommandRegenerate,
	"nova carta": CommandRegenerate,
	"regenerate": CommandRegenerate,
	"encerrar":   CommandEnd,
	"sair":       CommandEnd,
	"fim":        CommandEnd,
	"end":        CommandEnd,
}

// keywordCommands is the containment fallback, checked in fixed priority
// order so a message holding several keywords resolves deterministically.
var keywordCommands = []struct {
	keyword string
	cmd     Command
}{
	{"regenerar", CommandRegenerate},
	{"nova carta", CommandRegenerate},
	{"inspirar", CommandInspire},
	{"inspiracao", CommandInspire},
	{"ajuda", CommandHelp},
	{"encerrar", CommandEnd},
}

// RecognizeCommand resolves text to a command. Exact match wins; otherwise
// the first keyword (by table priority) contained as a whole word wins.
func RecognizeCommand(text string) (Command, bool) {
	n := Normalize(text)
	if cmd, ok := exactCommands[n]; ok {
		return cmd, true
	}
	for _, kc := range keywordCommands {
		if containsWord(n, kc.keyword) {
			return kc.cmd, true
		}
	}
	return "", false
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// Normalize lowercases, strips Portuguese accents and punctuation, and
// collapses whitespace so command matching is tolerant of typing style.
func Normalize(text string) string {
	n := strings.ToLower(strings.TrimSpace(text))
	n = accentReplacer.Replace(n)

	var b strings.Builder
	for _, r := range n {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || text[idx-1] == ' '
	end := idx + len(word)
	after := end == len(text) || text[end] == ' '
	return before && after
}
