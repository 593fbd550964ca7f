package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// CitationMarkerPattern matches the inline citation markers the
	// system prompts require ("[source: project_name]"). The same shape
	// is parsed back out of assistant turns to track which project the
	// conversation is about, so the prompts and this pattern must move
	// together.
	CitationMarkerPattern = `\[source:\s*([^\]]+)\]`

	// InsufficientContextMessage is returned verbatim when retrieval
	// yields nothing usable.
	InsufficientContextMessage = "I don't have enough information in my portfolio to answer that question reliably. Could you ask about one of my documented projects?"

	// GenerationFailureMessage is returned when the model call itself fails.
	GenerationFailureMessage = "I encountered an error generating a response. Please try again."

	// RejectionPreamble and RejectionSuffix wrap the judge's feedback
	// items in the apology produced when a response is rejected.
	RejectionPreamble = "I apologize, but I cannot provide a sufficiently grounded response to your question. The issues are: "
	RejectionSuffix   = ". Please try asking about a more documented aspect of my portfolio."
)
