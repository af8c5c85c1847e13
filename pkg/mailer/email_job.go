package mailer

// Message is a fully rendered email. It is also the JSON payload put on the
// RabbitMQ queue, so the worker only has to deliver it.
// HTML is optional; Text is recommended as fallback.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}
