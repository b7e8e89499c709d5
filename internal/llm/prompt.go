package llm

import (
	"fmt"
	"strings"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
)

const extractSystemPrompt = `You analyse legal document templates.
List every placeholder that a user must fill in before the document can be signed.
Placeholders are usually written in brackets ([Company Name], {{investor_name}}, <DATE>),
as blanks with a label ("Name: ________"), or as dollar amounts like $[_____________].

For each placeholder return:
- key: snake_case identifier (company_name, purchase_amount, investor_email)
- label: short human readable name
- description: one sentence telling the user what to enter
- type: one of text, date, number, currency, email, address
- pattern: the exact characters of the placeholder as they appear in the text, copied verbatim

Report each distinct placeholder once, in order of first appearance.
Return JSON only.`

const chatSystemPrompt = `You help a user fill in the placeholders of the legal document %q.
Be brief and friendly. Ask for one or two missing values at a time, most important first.
When the user gives a value, put it in "updates" using the field key exactly as listed.
Never invent values the user did not provide. Dates use the format the document expects.
When every field is filled, say so and suggest reviewing the document.

Fields (key | label | type | current value):
%s`

func chatSystem(documentName string, fields []reconcile.Field) string {
	var b strings.Builder
	for _, f := range fields {
		value := f.Value
		if strings.TrimSpace(value) == "" {
			value = "(missing)"
		}
		fmt.Fprintf(&b, "- %s | %s | %s | %s\n", f.Key, f.Label, f.Type, value)
		if f.Description != "" {
			fmt.Fprintf(&b, "  %s\n", f.Description)
		}
	}
	if b.Len() == 0 {
		b.WriteString("(no fields)\n")
	}
	return fmt.Sprintf(chatSystemPrompt, documentName, b.String())
}
