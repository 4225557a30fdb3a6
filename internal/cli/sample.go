package cli

import "introxpection-quiz/internal/domain"

// sampleQuizzes is served when neither Postgres nor a quiz directory is configured.
func sampleQuizzes() map[string]domain.Definition {
	return map[string]domain.Definition{
		"work-style": {
			ID:    "work-style",
			Title: "What is your work style?",
			Questions: []domain.Question{
				{
					Text: "A new project lands on your desk. First move?",
					Answers: []domain.Answer{
						{Text: "Sketch a plan with milestones", Scores: map[string]int{"architect": 3, "explorer": 1}},
						{Text: "Build a rough prototype today", Scores: map[string]int{"explorer": 3}},
						{Text: "Call the people it affects", Scores: map[string]int{"connector": 3, "architect": 1}},
					},
				},
				{
					Text: "Your favourite kind of meeting is...",
					Answers: []domain.Answer{
						{Text: "One with an agenda and a decision", Scores: map[string]int{"architect": 2}},
						{Text: "A whiteboard jam with no agenda", Scores: map[string]int{"explorer": 2, "connector": 1}},
						{Text: "A long coffee with a colleague", Scores: map[string]int{"connector": 2}},
					},
				},
				{
					Text: "Something breaks in production. You...",
					Answers: []domain.Answer{
						{Text: "Follow the runbook step by step", Scores: map[string]int{"architect": 2}},
						{Text: "Dive into the logs and poke around", Scores: map[string]int{"explorer": 2}},
						{Text: "Open a channel and rally the team", Scores: map[string]int{"connector": 2}},
						{Text: "Wait to see if it fixes itself", Scores: map[string]int{}},
					},
				},
			},
			Profiles: []domain.Profile{
				{
					ID:          "architect",
					Name:        "The Architect",
					Subtitle:    "Plans first, builds once",
					Description: "You like structure and a clear path from idea to result.",
					Icon:        "📐",
					Traits:      []domain.Trait{{Label: "Strength", Value: "Foresight"}},
				},
				{
					ID:          "explorer",
					Name:        "The Explorer",
					Subtitle:    "Learns by doing",
					Description: "You would rather try three things than debate one.",
					Icon:        "🧭",
					Traits:      []domain.Trait{{Label: "Strength", Value: "Curiosity"}},
				},
				{
					ID:          "connector",
					Name:        "The Connector",
					Subtitle:    "Nothing ships alone",
					Description: "You get things done through people and keep everyone in the loop.",
					Icon:        "🤝",
					Traits:      []domain.Trait{{Label: "Strength", Value: "Empathy"}},
				},
			},
		},
	}
}
