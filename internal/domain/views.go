package domain

import "fmt"

// Frame is what a view renders: either a QuestionView or a ResultView.
type Frame interface {
	frame()
}

// AnswerView is a single selectable answer.
type AnswerView struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// QuestionView is the view model of the current question.
type QuestionView struct {
	Index     int          `json:"index"`
	Total     int          `json:"total"`
	Text      string       `json:"text"`
	Answers   []AnswerView `json:"answers"`
	Selected  *int         `json:"selected,omitempty"`
	CanGoBack bool         `json:"canGoBack"`
	Progress  float64      `json:"progress"`
}

// ResultView is the view model shown once the attempt is complete.
type ResultView struct {
	Profile   Profile        `json:"profile"`
	Scores    map[string]int `json:"scores"`
	ShareText string         `json:"shareText"`
	Progress  float64        `json:"progress"`
}

func (QuestionView) frame() {}
func (ResultView) frame()   {}

// AnswerLetter labels answer i as A, B, C...
func AnswerLetter(i int) string {
	if i < 0 || i >= 26 {
		return fmt.Sprintf("%d", i+1)
	}
	return string(rune('A' + i))
}

// ShareText is the human readable summary of a result.
func ShareText(title string, p Profile) string {
	text := fmt.Sprintf("I just took %q and I am: %s!", title, p.Name)
	if p.Subtitle != "" {
		text += " " + p.Subtitle
	}
	return text
}
