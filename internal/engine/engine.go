package engine

import (
	"fmt"
	"time"

	"introxpection-quiz/internal/domain"
)

// AnswerRequiredMessage is sent to the Notifier when advancing is refused.
const AnswerRequiredMessage = "Please select an answer before continuing."

// View renders the attempt. It is called after construction and after every
// state change with either a domain.QuestionView or a domain.ResultView.
type View interface {
	Render(snap domain.Snapshot, frame domain.Frame)
}

// Notifier receives user-facing warnings.
type Notifier interface {
	Notify(message string)
}

// Reporter receives completed attempts. Implementations must not block.
type Reporter interface {
	Report(c domain.Completion)
}

// Option configures an Engine.
type Option func(*Engine)

// WithView sets the view collaborator.
func WithView(v View) Option {
	return func(e *Engine) { e.view = v }
}

// WithNotifier sets the warning sink.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithReporter sets the analytics collaborator.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithAttemptID tags completions with the host's attempt id.
func WithAttemptID(id string) Option {
	return func(e *Engine) { e.attemptID = id }
}

// WithClock is used by tests for deterministic completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine drives one attempt of a quiz. It is not safe for concurrent use;
// hosts call it from a single event loop.
type Engine struct {
	def       domain.Definition
	attemptID string
	view      View
	notifier  Notifier
	reporter  Reporter
	now       func() time.Time

	current  int
	answers  map[int]int
	scores   map[string]int
	complete bool
	result   *domain.Result
	version  uint64
}

// New validates def and starts an attempt at the first question. The
// definition must not be modified afterwards.
func New(def domain.Definition, opts ...Option) (*Engine, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	e := &Engine{
		def:      def,
		view:     nopView{},
		notifier: nopNotifier{},
		reporter: nopReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	e.render()
	return e, nil
}

func (e *Engine) reset() {
	e.current = 0
	e.answers = make(map[int]int)
	e.scores = Replay(e.def, e.answers)
	e.complete = false
	e.result = nil
}

// SelectAnswer records answerIndex for the current question and recomputes
// every score from the recorded answers.
func (e *Engine) SelectAnswer(answerIndex int) error {
	if e.complete {
		return domain.ErrQuizAlreadyComplete
	}
	n := len(e.def.Questions[e.current].Answers)
	if answerIndex < 0 || answerIndex >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidAnswerIndex, answerIndex, n)
	}
	e.answers[e.current] = answerIndex
	e.scores = Replay(e.def, e.answers)
	e.changed()
	return nil
}

// Advance moves to the next question, or completes the attempt from the
// last one. An unanswered current question is refused with
// domain.ErrAnswerRequired and a notification; state is left as is.
func (e *Engine) Advance() error {
	if e.complete {
		return domain.ErrQuizAlreadyComplete
	}
	if _, ok := e.answers[e.current]; !ok {
		e.notifier.Notify(AnswerRequiredMessage)
		return domain.ErrAnswerRequired
	}
	if e.current == len(e.def.Questions)-1 {
		e.Complete()
		return nil
	}
	e.current++
	e.changed()
	return nil
}

// SelectAndAdvance selects an answer and immediately advances.
func (e *Engine) SelectAndAdvance(answerIndex int) error {
	if err := e.SelectAnswer(answerIndex); err != nil {
		return err
	}
	return e.Advance()
}

// GoBack moves to the previous question. It is a no-op on the first one.
func (e *Engine) GoBack() error {
	if e.complete {
		return domain.ErrQuizAlreadyComplete
	}
	if e.current == 0 {
		return nil
	}
	e.current--
	e.changed()
	return nil
}

// Complete finishes the attempt. The first call fixes the winner, renders
// the result and reports it; later calls return the same result untouched.
func (e *Engine) Complete() domain.Result {
	if e.result != nil {
		return cloneResult(*e.result)
	}
	e.complete = true
	e.current = len(e.def.Questions) - 1
	e.scores = Replay(e.def, e.answers)
	winner, _ := WinningProfile(e.def.Profiles, e.scores)
	e.result = &domain.Result{Profile: winner, Scores: copyScores(e.scores)}
	e.changed()
	e.reporter.Report(domain.Completion{
		QuizID:      e.def.ID,
		AttemptID:   e.attemptID,
		ProfileID:   winner.ID,
		Scores:      copyScores(e.scores),
		CompletedAt: e.now(),
	})
	return cloneResult(*e.result)
}

// Retake restarts the attempt from the first question. It is valid at any
// point, not only after completion.
func (e *Engine) Retake() {
	e.reset()
	e.changed()
}

// Winner computes the leading profile from the current scores.
func (e *Engine) Winner() domain.Profile {
	if e.result != nil {
		return e.result.Profile
	}
	winner, _ := WinningProfile(e.def.Profiles, e.scores)
	return winner
}

// Result returns the cached result once the attempt is complete.
func (e *Engine) Result() (domain.Result, bool) {
	if e.result == nil {
		return domain.Result{}, false
	}
	return cloneResult(*e.result), true
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		CurrentQuestion: e.current,
		Answers:         copyAnswers(e.answers),
		Scores:          copyScores(e.scores),
		Complete:        e.complete,
		Version:         e.version,
	}
}

// Frame builds the view model for the current state.
func (e *Engine) Frame() domain.Frame {
	if e.result != nil {
		return domain.ResultView{
			Profile:   e.result.Profile,
			Scores:    copyScores(e.result.Scores),
			ShareText: domain.ShareText(e.def.Title, e.result.Profile),
			Progress:  1,
		}
	}
	q := e.def.Questions[e.current]
	view := domain.QuestionView{
		Index:     e.current,
		Total:     len(e.def.Questions),
		Text:      q.Text,
		Answers:   make([]domain.AnswerView, len(q.Answers)),
		CanGoBack: e.current > 0,
		Progress:  float64(e.current) / float64(len(e.def.Questions)),
	}
	for i, a := range q.Answers {
		view.Answers[i] = domain.AnswerView{Index: i, Letter: domain.AnswerLetter(i), Text: a.Text}
	}
	if selected, ok := e.answers[e.current]; ok {
		view.Selected = &selected
	}
	return view
}

// Definition returns the quiz being played.
func (e *Engine) Definition() domain.Definition { return e.def }

// AttemptID returns the id given with WithAttemptID.
func (e *Engine) AttemptID() string { return e.attemptID }

// CurrentQuestion returns the index of the question on screen.
func (e *Engine) CurrentQuestion() int { return e.current }

// IsComplete reports whether the attempt reached its result.
func (e *Engine) IsComplete() bool { return e.complete }

// Version increases on every state change.
func (e *Engine) Version() uint64 { return e.version }

// Scores returns a copy of the per-profile scores.
func (e *Engine) Scores() map[string]int { return copyScores(e.scores) }

// Answers returns a copy of the recorded answers keyed by question index.
func (e *Engine) Answers() map[int]int { return copyAnswers(e.answers) }

func (e *Engine) changed() {
	e.version++
	e.render()
}

func (e *Engine) render() {
	e.view.Render(e.Snapshot(), e.Frame())
}

func cloneResult(r domain.Result) domain.Result {
	r.Scores = copyScores(r.Scores)
	return r
}

type nopView struct{}

func (nopView) Render(domain.Snapshot, domain.Frame) {}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopReporter struct{}

func (nopReporter) Report(domain.Completion) {}
