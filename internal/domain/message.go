package domain

// Message is a single chat message. Messages are immutable once created and
// belong to exactly one chat.
type Message struct {
	ID     string   `json:"id"`
	Sender string   `json:"sender"`
	Text   string   `json:"text"`
	Media  []string `json:"media"`
	Date   float64  `json:"date"`
}
