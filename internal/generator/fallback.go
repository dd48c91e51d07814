package generator

import (
	"fmt"
	"strings"
)

// FallbackArtifact is the static letter used when both generation attempts
// fail. The user is never left without a result, so this path is ordinary
// behavior, not an error case.
func FallbackArtifact(in Input) string {
	name := ""
	challenge := ""
	for _, f := range in.Fields {
		switch f.Name {
		case "name":
			name = f.Value
		case "challenge":
			challenge = f.Value
		}
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "Olá, %s!\n\n", name)
	} else {
		b.WriteString("Olá!\n\n")
	}

	b.WriteString("Nossa consciência criativa está em alta demanda neste momento, " +
		"mas não queríamos deixar você sem a sua carta.\n\n")

	if challenge != "" {
		fmt.Fprintf(&b, "Sobre o desafio que você compartilhou — %q — lembre-se: "+
			"todo grande negócio começou exatamente onde você está agora. "+
			"Clareza vem da ação, não da espera.\n\n", challenge)
	}

	b.WriteString("Três reflexões para hoje:\n\n" +
		"1. Escreva a menor próxima ação que depende só de você.\n\n" +
		"2. Converse com um cliente real antes de mudar qualquer plano.\n\n" +
		"3. Proteja uma hora do seu dia para trabalhar no negócio, não só nele.\n\n" +
		"Com carinho,\nConsciênc.IA")

	return b.String()
}
