package services

import (
	"fmt"
	"strings"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// Customer-facing texts. The shop's customers speak Portuguese.
const (
	contingencyBase = `🚨 Nosso sistema caiu por um momento.

Se você fez algum pedido hoje, por favor *refaça seu pedido* aqui no WhatsApp.

Se você não fez pedido, desconsidere esta mensagem.`

	conversationInstructions = `
📝 *Como refazer seu pedido:*
Responda *UMA COISA POR VEZ* seguindo as instruções:

1️⃣ Digite: *REFAZER*
   (a gente vai perguntar o item)

2️⃣ Responda qual *ITEM* você quer
   (a gente vai perguntar o endereço)

3️⃣ Responda seu *ENDEREÇO*
   (a gente vai perguntar a forma de pagamento)

4️⃣ Escolha a forma de pagamento:
   *DINHEIRO*, *PIX* ou *CARTÃO*

✅ Pronto! Seu pedido será confirmado.`

	singleMessageInstructions = `
⚡ *Como refazer seu pedido (rápido):*
Digite REFAZER seguido de todas as informações:

Exemplo:
REFAZER xtudo sem banana, pizza gg, rua flores 123, dinheiro, troco pra 50

✅ Pronto! Seu pedido será confirmado na hora.`

	consentFooter = `
👉 Para continuar recebendo esses avisos, responda *SIM* (ou deixe em branco)
👉 Para não receber mais, responda *NÃO*`

	deactivationMessage = `✅ *SISTEMA VOLTOU A FUNCIONAR!*

Boa notícia! O sistema principal de pedidos voltou a funcionar normalmente.

📌 *IMPORTANTE:*
Se você fez pedido por aqui, *fique tranquilo*: ele foi enviado e está tudo certo! ✔️
Para *novos pedidos*, continue usando o sistema principal normalmente.

Este sistema de recuperação vai ficar *OFFLINE* agora.

Obrigado por usar! 🙏`

	msgDeactivateDenied = "❌ Você não tem permissão para desativar o sistema."

	msgAskItem    = "✅ Ótimo! Vou ajudar você a refazer seu pedido.\n\n📝 Qual item deseja? (ex: X-TUDO, HAMBÚRGUER, etc)"
	msgAskAddress = "✅ Anotei: %s\n\n📍 Qual é seu endereço? (rua, número, etc)"
	msgAskPayment = "✅ Endereço anotado: %s\n\n💳 Forma de pagamento?\nDigite: DINHEIRO, PIX ou CARTÃO"
	msgAskChange  = "✅ Pagamento: DINHEIRO\n\n💵 Vai precisar de troco?\n\nResponda de forma livre:\n• \"sem troco\"\n• \"troco pra 50\" (ou qualquer valor)"

	msgInvalidPayment = "❌ Desculpe, opção inválida. Digite: DINHEIRO, PIX ou CARTÃO"

	msgSingleMessageEmpty = "❌ Você precisa informar os dados do pedido.\n\nExemplo:\nREFAZER xtudo, pizza, rua x 123, dinheiro"
)

// ContingencyMessage builds the alert text for the active order flow.
func ContingencyMessage(flow OrderFlow) string {
	instructions := ""
	if flow != nil {
		instructions = flow.Instructions()
	}
	return contingencyBase + instructions + consentFooter
}

// DeactivationMessage is the all-clear text.
func DeactivationMessage() string {
	return deactivationMessage
}

// OrderSummary renders the confirmation sent after a structured order is logged.
func OrderSummary(order models.Order) string {
	var b strings.Builder
	b.WriteString("✅ Pedido confirmado!\n\n📋 Resumo:\n")
	fmt.Fprintf(&b, "🍔 Item: %s\n", order.Item)
	if order.Address != nil {
		fmt.Fprintf(&b, "📍 Endereço: %s\n", *order.Address)
	}
	fmt.Fprintf(&b, "💳 Pagamento: %s\n", order.Payment)
	if order.Change != nil {
		fmt.Fprintf(&b, "💵 Troco: %s\n", *order.Change)
	}
	fmt.Fprintf(&b, "\n🆔 ID: #%d\n\nObrigado! 🙏", order.ID)
	return b.String()
}

// FreeTextSummary renders the confirmation for a single-message order.
func FreeTextSummary(order models.Order) string {
	return fmt.Sprintf("✅ Pedido recebido!\n\n📋 Detalhes:\n%s\n\n🆔 ID: #%d\n\nObrigado! 🙏", order.Item, order.ID)
}
