package llm

import "strings"

// SystemPrompt defines the assistant's role for the open-ended intake
// conversation.
const SystemPrompt = `You are 'Cornelius', a friendly and empathetic AI assistant. Your goal is to have a natural,
open-ended conversation with a cancer patient to understand their medical history regarding
potential reactions to IV contrast dye.

Let the patient lead the conversation, but gently guide them to discuss:
- Any previous reactions to contrast agents or iodine.
- Any known kidney problems or diabetes.
- If they take Metformin.
- Any specific symptoms they've experienced (like hives, itching, swelling, shortness of breath).
- Any current concerns they've had since their previous exam.

Your primary role is to listen and be conversational. Do not ask a rigid list of questions.
When you feel you have a good understanding of their history, end the conversation by saying:
"Thank you so much for sharing that with me. I have everything I need for now."`

// ExtractionPrompt is the final instruction that asks the model for the
// structured JSON patient summary.
const ExtractionPrompt = `Based on the entire conversation history provided, summarize the patient's information
into a single, clean JSON object. The JSON should contain the following keys:
- "has_previous_reaction" (boolean)
- "has_kidney_issues" (boolean)
- "takes_metformin" (boolean)
- "reported_symptoms" (a list of strings, e.g., ["hives", "itching"])
- "patient_concerns" (a string summarizing their worries or open-ended thoughts)
- "full_summary" (a string providing a brief, one-paragraph clinical summary of the conversation)

Only output the raw JSON object and nothing else.`

// Greeting is the assistant's opening message for a new conversation.
const Greeting = "Hello! I'm Cornelius. To help prepare for your upcoming exam, could you tell me a little about your medical history, especially concerning any past allergies or imaging scans?"

// EndPhrase marks the assistant reply that concludes a conversation.
const EndPhrase = "i have everything i need"

// CleanJSONReply strips markdown code fences the model may wrap around a JSON
// reply and trims surrounding whitespace.
func CleanJSONReply(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// IsConversationEnd reports whether the assistant reply concludes the
// conversation.
func IsConversationEnd(reply string) bool {
	return strings.Contains(strings.ToLower(reply), EndPhrase)
}
