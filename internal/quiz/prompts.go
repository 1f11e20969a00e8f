package quiz

import "fmt"

// generationPrompt builds the prompt for quiz generation from topic
// material. The model must return only a JSON array so parseQuestions
// can pick it out reliably.
func generationPrompt(material string, count int) string {
	return fmt.Sprintf(`You are a quiz generator for a study app. Write %d quiz questions that
test understanding of the material below. Mix multiple-choice and open
questions. Questions must be answerable from the material alone.

MATERIAL:
%s

Rules:
- For multiple_choice, give exactly 4 options and make "answer" one of them verbatim
- For open questions, "answer" is a short model answer
- Keep explanations to one or two sentences
- Return ONLY a JSON array, no other text

Return a JSON array:
[{
  "type": "multiple_choice|open",
  "text": "the question",
  "options": ["a", "b", "c", "d"],
  "answer": "the correct answer",
  "explanation": "why"
}]`, count, material)
}
