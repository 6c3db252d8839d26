package domain

// ExamplePrompt is a ready-made request offered to new users.
type ExamplePrompt struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

var examplePrompts = []ExamplePrompt{
	{Title: "Double jump", Text: "Make a double jump script"},
	{Title: "Obby checkpoints", Text: "Create a simple obby checkpoint system"},
	{Title: "Teleport GUI", Text: "Make a teleport GUI with buttons"},
	{Title: "Coin collecting", Text: "Create a coin collect system with leaderstats"},
}

// ExamplePrompts returns a copy of the built-in example prompts.
func ExamplePrompts() []ExamplePrompt {
	out := make([]ExamplePrompt, len(examplePrompts))
	copy(out, examplePrompts)
	return out
}
