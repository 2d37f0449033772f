package llm

import "strings"

// PromptMaxChars is the character budget for statement text inside the
// prompt. Anything beyond it is cut off before the template is filled.
const PromptMaxChars = 10000

// BuildPrompt fills the fixed instruction template with the statement text.
// The model must enumerate every transaction line, leave the date empty on
// continuation lines (normalization carries it forward), capture the header
// fields when present, and skip summary lines.
func BuildPrompt(text string) string {
	if len(text) > PromptMaxChars {
		text = text[:PromptMaxChars]
	}

	var b strings.Builder
	b.WriteString("You are an expert data entry clerk. Extract every individual transaction line\n")
	b.WriteString("from the following bank statement text. Pay close attention to the 'Debits' and\n")
	b.WriteString("'Credits' columns.\n")
	b.WriteString("If a date is printed on one line only, it applies to the lines below it until a\n")
	b.WriteString("new date appears; leave \"date\" empty for those lines.\n")
	b.WriteString("Extract \"account_holder\" and \"statement_period\" if you find them.\n")
	b.WriteString("Ignore summary lines like 'Balance brought forward'.\n\n")

	b.WriteString("Output STRICT JSON only, a single object of this shape:\n")
	b.WriteString("{\n")
	b.WriteString("  \"account_holder\": string or omitted,\n")
	b.WriteString("  \"statement_period\": string or omitted,\n")
	b.WriteString("  \"transactions\": [\n")
	b.WriteString("    {\"date\": string, \"description\": string, \"debit\": string, \"credit\": string, \"balance\": string}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")
	b.WriteString("Every transaction field is a string copied verbatim from the statement; omit a\n")
	b.WriteString("field that is not present on the line. Do not convert or reformat numbers.\n")
	b.WriteString("Do NOT wrap the response in code fences or Markdown.\n\n")

	b.WriteString("Statement Text:\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n")

	return b.String()
}
