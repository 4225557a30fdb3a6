package engine

import "introxpection-quiz/internal/domain"

// Replay rebuilds the score of every profile from the recorded answers.
// Weights for ids that name no profile are ignored, and out of range
// entries contribute nothing.
func Replay(def domain.Definition, answers map[int]int) map[string]int {
	scores := make(map[string]int, len(def.Profiles))
	for _, p := range def.Profiles {
		scores[p.ID] = 0
	}
	for q, a := range answers {
		if q < 0 || q >= len(def.Questions) {
			continue
		}
		choices := def.Questions[q].Answers
		if a < 0 || a >= len(choices) {
			continue
		}
		for id, weight := range choices[a].Scores {
			if _, ok := scores[id]; ok {
				scores[id] += weight
			}
		}
	}
	return scores
}

// WinningProfile picks the profile with the strictly greatest score. Profiles
// are scanned in declaration order so ties go to the earliest one.
func WinningProfile(profiles []domain.Profile, scores map[string]int) (domain.Profile, bool) {
	if len(profiles) == 0 {
		return domain.Profile{}, false
	}
	best := 0
	for i := 1; i < len(profiles); i++ {
		if scores[profiles[i].ID] > scores[profiles[best].ID] {
			best = i
		}
	}
	return profiles[best], true
}

func copyScores(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyAnswers(src map[int]int) map[int]int {
	dst := make(map[int]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
