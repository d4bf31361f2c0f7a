// prompt.go holds the vision-model prompts. The default prompt asks for
// the visit schedule table as strict JSON; the strict variant is used on
// the retry after a malformed or off-target response.
package ocrprocessor

import "fmt"

// systemPrompt steers the vision model toward the one table this pipeline
// cares about and pins the response shape.
const systemPrompt = `You are an expert OCR system specialized in extracting ONLY the main
multi-page Visit Schedule / Schedule of Assessments / Document Attribute Matrix table.

RULES:
- Extract ONLY the largest, widest table with Visit columns.
- Must contain visit keywords like:
  V1, V2, V3, Visit 1, Visit 2, Day 0, Day 14, Day 28, Randomisation, Screening.
- IGNORE unrelated tables (demographics, title boxes, key tables, summaries).
- Do NOT hallucinate. Missing cells = "".
- Output ONLY strict JSON:
    {
      "table_present": true/false,
      "headers": [...],
      "rows": [...],
      "note": ""
    }`

// strictSystemPrompt is the retry prompt. It repeats the rules with the
// response contract tightened, for models that wrapped the first answer in
// prose or fences.
const strictSystemPrompt = systemPrompt + `

STRICT MODE:
- Your ENTIRE response must be a single JSON object and nothing else.
- No markdown, no code fences, no commentary before or after the JSON.
- Every row must be an array of strings with exactly one entry per header.
- If no visit schedule table is visible, respond with
  {"table_present": false, "headers": [], "rows": [], "note": "<reason>"}.`

// buildUserPrompt returns the per-page user message text. Page numbers are
// 1-based in the prompt since that is how documents label them.
func buildUserPrompt(pageIndex int, strict bool) string {
	prompt := fmt.Sprintf("Page %d of the document.\n"+
		"Extract ONLY the Visit Schedule / Assessment Matrix.\n"+
		"Do NOT extract unrelated tables.\n"+
		"Return strict JSON only.", pageIndex+1)
	if strict {
		prompt += "\nRespond with the JSON object only. No other text."
	}
	return prompt
}
