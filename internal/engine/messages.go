package engine

// User-facing texts. The user is never shown raw error detail; failure
// paths end in a re-prompt or in msgApology.
const (
	msgWelcome = "Olá! Eu sou a Consciênc.IA. ✨\n\n" +
		"Em poucas perguntas eu preparo uma Carta de Consciência " +
		"personalizada para você e o seu negócio."

	msgWelcomeBack = "Vamos recomeçar! 🌱 Vou te fazer as perguntas novamente " +
		"para preparar uma nova carta."

	msgPreparing = "Perfeito, tenho tudo o que preciso. 🙏\n\n" +
		"Estou escrevendo a sua Carta de Consciência — me dê um instante..."

	msgStillWorking = "Estou finalizando a sua carta, só mais um momento... ✍️"

	msgMenu = "O que você quer fazer agora?\n\n" +
		"• *ajuda* — ver as opções\n" +
		"• *inspirar* — receber uma inspiração\n" +
		"• *regenerar* — pedir uma nova carta\n" +
		"• *encerrar* — encerrar por aqui"

	msgHelp = "Claro! Você pode me enviar:\n\n" +
		"• *inspirar* — uma dose de inspiração para o seu dia\n" +
		"• *regenerar* — uma nova Carta de Consciência (1x por dia)\n" +
		"• *encerrar* — pausar nossa conversa\n\n" +
		"E se quiser recomeçar do zero, é só dizer \"quero minha carta\"."

	msgCooldown = "Sua carta mais recente ainda está fresquinha. 💌 " +
		"Para manter cada carta especial, consigo gerar uma nova apenas " +
		"uma vez por dia. Tente novamente mais tarde!"

	msgFarewell = "Foi um prazer! 💛 Quando quiser conversar de novo, " +
		"é só mandar uma mensagem — sua carta continua aqui."

	msgNotExpectingMedia = "Por enquanto eu só consigo ler mensagens de texto " +
		"nesta etapa. Pode escrever a sua resposta?"

	msgApology = "Tive uma dificuldade técnica por aqui. 😔 " +
		"Pode tentar de novo em instantes? Sua conversa está salva."
)

// inspirations is the rotating pool served by the inspire command.
var inspirations = []string{
	"\"O sucesso é a soma de pequenos esforços repetidos dia após dia.\" — Robert Collier",
	"\"Feito é melhor que perfeito.\" Publique, aprenda, ajuste.",
	"\"Quem não sabe para qual porto navega, nenhum vento é favorável.\" — Sêneca",
	"Seu maior concorrente é a versão de ontem do seu negócio.",
	"\"A melhor maneira de prever o futuro é criá-lo.\" — Peter Drucker",
	"Clareza vem da ação: a próxima pequena entrega ensina mais que dez planos.",
}
