// Package chat serves the patient/specialist messaging screens:
// conversation lists, message history and sending. Live delivery rides on
// the realtime hub, which bridges the chats collection to topic
// subscribers.
package chat

// Collection is the document collection holding conversation records.
// Messages live in per-conversation subcollections ("chats/{id}/messages").
const Collection = "chats"

// MessagesCollection returns the message collection path for a conversation.
func MessagesCollection(conversationID string) string {
	return Collection + "/" + conversationID + "/messages"
}

// Conversation is one chat thread between a patient and a specialist.
type Conversation struct {
	ID             string `json:"id"`
	PatientID      string `json:"patient_id"`
	SpecialistID   string `json:"specialist_id"`
	PatientName    string `json:"patient_name"`
	SpecialistName string `json:"specialist_name"`
	LastMessage    string `json:"last_message,omitempty"`
	LastMessageAt  string `json:"last_message_at,omitempty"`
}

// Message is one chat message.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Text           string `json:"text"`
	SentAt         string `json:"sent_at"`
}
