package grounding

import (
	"strings"

	"github.com/kailas-cloud/gitaverse/internal/domain/condition"
)

const requirements = `REQUIREMENTS:
- DO NOT GIVE ANSWERS TO FACTUAL QUESTIONS, JUST SAY DONT KNOW
- 75-100 words long
- Ensure the ENTIRE response is generated completely
- Do NOT truncate or leave the response incomplete
- Inspired by Krishna's teachings
- Add a PERSONAL TOUCH to the answer
- MUST include chapter and verse number in format: (Chapter X, Verse Y)
- Ensure ONLY ONE response is generated
- Ensure ONLY ONE verse is generated
- First try to find verses from other chapters(3-18) if couldnt find then search chapter 2`

// BuildPrompt composes the single user message sent to the generator and
// returns the condition label that shaped it ("" when none matched).
func BuildPrompt(question string) (prompt, label string) {
	var b strings.Builder
	b.WriteString(condition.GenericGuidance)

	if g, ok := condition.Select(question); ok {
		label = g.Label
		b.WriteString("\n\nSpecific Guidance for ")
		b.WriteString(g.Label)
		b.WriteString(":\n")
		b.WriteString(g.Guidance)
	}

	b.WriteString("\n\n")
	b.WriteString(requirements)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String(), label
}
