package domain

import "time"

// Trait is a label/value pair shown alongside a profile result.
type Trait struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Profile is a candidate quiz outcome. Everything but ID is display metadata.
type Profile struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Subtitle    string  `json:"subtitle" yaml:"subtitle"`
	Description string  `json:"description" yaml:"description"`
	Icon        string  `json:"icon" yaml:"icon"`
	Traits      []Trait `json:"traits,omitempty" yaml:"traits,omitempty"`
}

// Answer is one choice of a question. Scores maps profile IDs to the weight
// added when the answer is chosen; missing profiles weigh zero.
type Answer struct {
	Text   string         `json:"text" yaml:"text"`
	Scores map[string]int `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// Question models a single quiz step with at least two answers.
type Question struct {
	Text    string   `json:"text" yaml:"text"`
	Answers []Answer `json:"answers" yaml:"answers"`
}

// Definition is the static description of a personality quiz.
type Definition struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
	Profiles  []Profile  `json:"profiles" yaml:"profiles"`
}

// Profile returns the profile with the given id.
func (d Definition) Profile(id string) (Profile, bool) {
	for _, p := range d.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Summary is a catalog entry for a definition.
type Summary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Questions int    `json:"questions"`
	Profiles  int    `json:"profiles"`
}

// Summarize builds the catalog entry for d.
func (d Definition) Summarize() Summary {
	return Summary{ID: d.ID, Title: d.Title, Questions: len(d.Questions), Profiles: len(d.Profiles)}
}

// Snapshot is a copy of an attempt's state at one point in time.
type Snapshot struct {
	CurrentQuestion int            `json:"currentQuestion"`
	Answers         map[int]int    `json:"answers"`
	Scores          map[string]int `json:"scores"`
	Complete        bool           `json:"complete"`
	Version         uint64         `json:"version"`
}

// Result is the outcome of a completed attempt.
type Result struct {
	Profile Profile        `json:"profile"`
	Scores  map[string]int `json:"scores"`
}

// Completion is what the host learns when an attempt finishes.
type Completion struct {
	QuizID      string         `json:"quizId"`
	AttemptID   string         `json:"attemptId,omitempty"`
	ProfileID   string         `json:"profileId"`
	Scores      map[string]int `json:"scores,omitempty"`
	CompletedAt time.Time      `json:"completedAt"`
}

// QuizStats aggregates completions of a quiz per winning profile.
type QuizStats struct {
	QuizID      string           `json:"quizId"`
	Completions int64            `json:"completions"`
	Results     map[string]int64 `json:"results"`
}
