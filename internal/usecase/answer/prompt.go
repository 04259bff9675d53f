package answer

import (
	"strings"

	"warehouse-assistant-bot/internal/domain"
)

const envelopeHeader = `You are a warehouse AI assistant.

Mode: `

const envelopeRules = `
Rules:
- Use ONLY the supplied inventory & shipment records
- Never fabricate data
- If the records do not contain the answer, reply exactly: "` + domain.DataNotAvailable + `"
`

// BuildEnvelope renders the instruction envelope sent to the model.
// The records block is always present, even when empty.
func BuildEnvelope(mode domain.Mode, records []domain.Record, question string) string {
	var b strings.Builder
	b.WriteString(envelopeHeader)
	b.WriteString(string(mode))
	b.WriteString("\n")
	b.WriteString(envelopeRules)
	b.WriteString("\nRecords:\n")
	b.WriteString(domain.JoinRecords(records))
	b.WriteString("\n\nUser question:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer professionally.\n")
	return b.String()
}
