package domain

// Scenario is a role-play situation the user practices in.
// Dialogue prompts live with the AI layer and are not modelled here.
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Goal        string `json:"goal,omitempty"`
	IsCustom    bool   `json:"isCustom,omitempty"`
}

// BuiltinScenarios returns the scenarios shipped with the app, in journey order.
func BuiltinScenarios() []Scenario {
	return []Scenario{
		{
			ID: "airport", Title: "At the Airport", Emoji: "✈️",
			Description: "Navigate check-in, security, and boarding.",
			Goal:        "Successfully check in for your flight and ask for a window seat.",
		},
		{
			ID: "restaurant", Title: "In a Restaurant", Emoji: "🍔",
			Description: "Order food, ask for the bill, and interact with the waiter.",
		},
		{
			ID: "job_interview", Title: "Job Interview", Emoji: "💼",
			Description: "Answer common interview questions and showcase your skills.",
		},
		{
			ID: "hotel", Title: "At the Hotel", Emoji: "🏨",
			Description: "Check-in, ask for room service, and check-out.",
		},
		{
			ID: "friends", Title: "Meeting Friends", Emoji: "☕",
			Description: "Make small talk and catch up with friends.",
		},
		{
			ID: "doctor", Title: "At the Doctor", Emoji: "⚕️",
			Description: "Describe your symptoms and understand the doctor's advice.",
		},
	}
}
