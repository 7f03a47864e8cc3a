package gateway

// Instructions sent to the models. They are part of the product behavior.
const (
	summarizeSystemPrompt = "You are a helpful expert. Summarize the following document in clear, structured bullet points. Capture all key details."

	imageNotesPrompt = "Analyze this image (diagram, slide, or text) and create clear, structured study notes. Use a main title, bullet points, and bold text for key concepts."

	chatSystemPromptPrefix = "You are a helpful assistant. Answer strictly based on the provided context. If the answer is not in the context, say so.\n\nCONTEXT:\n"

	chatBackupSystemPromptPrefix = "Answer based on context: "
)

// Degraded and exhausted responses shown to users
const (
	MsgSummarizeBusy   = "Failed to summarize. Service is busy."
	TranscribeBusyNote = "AI could not summarize (Service Busy). Here is the text: \n"
	MsgImageFailed     = "Failed to process image."
	MsgChatBusy        = "AI Service is currently busy. Please try again later."
)
