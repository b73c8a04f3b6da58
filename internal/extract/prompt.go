package extract

import (
	"fmt"
	"strings"
	"time"

	"moneyflow/internal/core"
)

func systemPrompt(categories []core.Category, accounts []core.Account, today time.Time) string {
	cats := make([]string, 0, len(categories))
	for _, c := range categories {
		cats = append(cats, fmt.Sprintf("%s (%s)", c.Name, c.Type))
	}
	accs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		bank := a.BankName
		if bank == "" {
			bank = "outro"
		}
		accs = append(accs, fmt.Sprintf("%s (%s)", a.Name, bank))
	}

	var b strings.Builder
	b.WriteString("Você é um assistente especializado em extrair informações de transações financeiras de texto em português.\n\n")
	fmt.Fprintf(&b, "Data de hoje: %s\n", today.Format("2006-01-02"))
	fmt.Fprintf(&b, "Categorias disponíveis: %s\n", strings.Join(cats, ", "))
	fmt.Fprintf(&b, "Contas disponíveis: %s\n\n", strings.Join(accs, ", "))
	b.WriteString(`Extraia as seguintes informações do texto e retorne APENAS um JSON válido (sem markdown, sem explicações):
{
  "items": [
    {
      "description": "descrição da transação",
      "amount": valor numérico,
      "type": "income" ou "expense",
      "category_name": "nome da categoria mais apropriada",
      "payment_method": "cash", "debit", "credit" ou "pix",
      "date": "YYYY-MM-DD" (use hoje se não especificado),
      "bank_name": "nubank", "itau", "santander", "bb", "inter", "c6", "caixa", "bradesco", "picpay", "mercadopago" ou "other"
    }
  ]
}

Exemplo de entrada: "nubank mercado hoje r$ 132,49 no débito"
`)
	fmt.Fprintf(&b, `Exemplo de saída: {"items": [{"description": "Mercado", "amount": 132.49, "type": "expense", "category_name": "Alimentação", "payment_method": "debit", "date": "%s", "bank_name": "nubank"}]}`, today.Format("2006-01-02"))
	return b.String()
}
