package adminconfig

// Built-in prompt bodies used when no admin template of a kind is active.
// Placeholders are filled by the AI services before the model call.
const (
	defaultExtractionBody = `You are a sales assistant. Extract structured lead information from the
conversation transcript below. Respond with a single JSON object with the
fields: company_name, contact_name, email, phone, intent, summary, score
(integer 0-100 indicating purchase intent), rationale. Use empty strings
for fields not present in the transcript. Respond with JSON only.

Transcript:
{{transcript}}`

	defaultRecommendationBody = `You are a sales assistant. Given the lead context below, suggest the next
best actions for the sales representative. Respond with a JSON array of
objects with fields: action, reason, priority (high | medium | low).
Return at most five recommendations, JSON only.

Lead context:
{{lead_context}}`

	defaultQuestionsBody = `You are a sales assistant preparing a representative for a meeting.
Given the lead context below, produce discovery questions that advance the
deal. Respond with a JSON array of strings, at most {{max_questions}}
questions, JSON only.

Lead context:
{{lead_context}}`

	defaultIntelligenceBody = `You are a sales assistant. Summarize the meeting notes below. Respond
with a single JSON object with fields: summary (2-3 sentences),
action_items (array of objects with fields: description, owner, due_hint),
sentiment (positive | neutral | negative). Respond with JSON only.

Meeting notes:
{{notes}}`
)

// DefaultBody returns the built-in prompt body for a kind
func DefaultBody(kind Kind) string {
	switch kind {
	case KindExtraction:
		return defaultExtractionBody
	case KindRecommendation:
		return defaultRecommendationBody
	case KindQuestions:
		return defaultQuestionsBody
	case KindIntelligence:
		return defaultIntelligenceBody
	}
	return ""
}
