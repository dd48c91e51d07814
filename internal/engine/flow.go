package engine

import "github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"

// Step is one question of the intake interview. Flow variants (which
// questions are asked) are configuration data consumed by a single engine,
// not separate code paths.
type Step struct {
	State  domain.ConversationState
	Field  string
	Prompt string

	// Reprompt is sent when the answer fails validation; the state does
	// not change.
	Reprompt string

	// MinLen is the minimum answer length in runes.
	MinLen int

	// AcceptsMedia allows a media reference as the answer for this step.
	AcceptsMedia bool
}

// Field names used across the engine, the generator prompt and reporting
// snapshots.
const (
	FieldName      = "name"
	FieldBusiness  = "business"
	FieldInstagram = "instagram"
	FieldChallenge = "challenge"
)

// DefaultFlow builds the interview for the standard Carta de Consciência
// variant. askBusinessContext drops or keeps the business question.
func DefaultFlow(askBusinessContext bool) []Step {
	steps := []Step{
		{
			State:    domain.StateAwaitingName,
			Field:    FieldName,
			Prompt:   "Para começar, me diga: qual é o seu nome?",
			Reprompt: "Não consegui entender. 😅 Pode me dizer o seu nome?",
			MinLen:   2,
		},
	}

	if askBusinessContext {
		steps = append(steps, Step{
			State: domain.StateAwaitingContext,
			Field: FieldBusiness,
			Prompt: "Prazer! 🙌 Agora me conte um pouco sobre o seu negócio: " +
				"o que você faz e para quem?",
			Reprompt: "Me conte um pouco mais, por favor — algumas frases sobre " +
				"o que o seu negócio faz já ajudam muito.",
			MinLen: 10,
		})
	}

	steps = append(steps,
		Step{
			State: domain.StateAwaitingReference,
			Field: FieldInstagram,
			Prompt: "Ótimo! Qual é o seu Instagram (ou outro perfil) para eu " +
				"conhecer melhor o seu trabalho? Pode enviar o @ ou um link.",
			Reprompt:     "Pode me enviar o seu @ do Instagram ou um link do seu perfil?",
			MinLen:       2,
			AcceptsMedia: true,
		},
		Step{
			State: domain.StateAwaitingStatement,
			Field: FieldChallenge,
			Prompt: "Agora a pergunta mais importante: qual é o maior desafio " +
				"do seu negócio hoje? Escreva com suas palavras, sem filtro.",
			Reprompt: "Esse é o coração da sua carta. 💛 Me conte com um pouco " +
				"mais de detalhe qual é o seu maior desafio hoje.",
			MinLen: 10,
		},
	)

	return steps
}
