package domain

// GenerateRequest is one single-shot call to a hosted text-generation model.
type GenerateRequest struct {
	SystemInstruction string
	Prompt            string
	Temperature       float32
}

// ConciergeRequest is the body posted by the chat widget. Only the latest
// message is sent; the widget keeps the visible history.
type ConciergeRequest struct {
	Message string `json:"message"`
}

type ConciergeReply struct {
	Reply string `json:"reply"`
}
