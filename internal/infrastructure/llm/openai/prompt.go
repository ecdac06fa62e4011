package openai

import "fmt"

// qaSystemPrompt carries the grounding contract: answers come only from
// the supplied context, with a fixed refusal sentence and a follow-up
// section the surface can recognize. Enforcement is best effort, the
// model is instructed rather than validated.
const qaSystemPrompt = `You are an expert AI assistant for executive education course materials. Your tone is professional, insightful, and academic.
Based ONLY on the provided context, synthesize a comprehensive answer to the user's question.
If the information is not in the context, state clearly: "Based on the provided documents, I cannot find information on that topic."

After providing the answer, suggest 2-3 relevant follow-up questions under a "--- \n*Suggested Follow-ups:*" heading.`

func buildQuestionPrompt(question, contextText string) string {
	return fmt.Sprintf(`Context:
%s

User Question:
%s`, contextText, question)
}
