package models

// TagCount is how many stored members carry a tag
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TaggedCustomer is a commerce customer returned by a live tag search
type TaggedCustomer struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Tags        []string `json:"tags"`
	OrdersCount int      `json:"ordersCount"`
	TotalSpent  string   `json:"totalSpent"`
}

// LogLine is one captured server log line
type LogLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}
