package domain

// Inquiry is a booking request submitted through the contact form.
type Inquiry struct {
	Name     string
	Email    string
	CheckIn  string
	CheckOut string
	Message  string
	// Honeypot is the hidden anti-automation field; humans leave it empty.
	Honeypot string
}

// Lead is a relayed inquiry as recorded in the lead log.
type Lead struct {
	PK        string
	SK        string
	LeadID    string
	Inquiry   Inquiry
	CreatedAt string
	TTL       int64
}
