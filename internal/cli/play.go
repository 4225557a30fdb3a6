package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"introxpection-quiz/internal/analytics"
	"introxpection-quiz/internal/config"
	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/engine"
	"introxpection-quiz/internal/infra/file"
	"introxpection-quiz/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays a quiz in the terminal and records the result locally.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		quizFile string
		quizID   string
		dbPath   string
		noStats  bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		Example: "  introxpection play --file quizzes/work-style.json\n" +
			"  introxpection play --quiz work-style",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			def, err := resolveDefinition(cmd.Context(), cfg, quizFile, quizID)
			if err != nil {
				return err
			}

			var reporter engine.Reporter
			if !noStats {
				store, err := sqlite.Open(cmd.Context(), firstNonEmpty(dbPath, cfg.SQLite.Path))
				if err != nil {
					return err
				}
				defer store.Close()
				async := analytics.NewAsyncReporter(store, 8, 1)
				async.Start()
				// Close before the store so queued completions are written.
				defer async.Close()
				reporter = async
			}
			return playQuiz(def, cmd.InOrStdin(), cmd.OutOrStdout(), reporter)
		},
	}
	cmd.Flags().StringVarP(&quizFile, "file", "f", "", "quiz definition file (YAML or JSON)")
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id to load from quiz.dir, or a built-in sample")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite stats file (defaults to sqlite.path, then the user config dir)")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "do not record the result")
	return cmd
}

func resolveDefinition(ctx context.Context, cfg config.Config, path, quizID string) (domain.Definition, error) {
	if path != "" {
		return file.ReadDefinition(path)
	}
	if quizID == "" {
		quizID = "work-style"
	}
	if cfg.Quiz.Dir != "" {
		def, err := file.NewLoader(cfg.Quiz.Dir).LoadQuiz(ctx, quizID)
		if err == nil || !errors.Is(err, domain.ErrQuizNotFound) {
			return def, err
		}
	}
	if def, ok := sampleQuizzes()[quizID]; ok {
		return def, nil
	}
	return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
}

// terminalView prints frames as plain text.
type terminalView struct {
	out   io.Writer
	title string
}

func (v terminalView) Render(_ domain.Snapshot, frame domain.Frame) {
	switch f := frame.(type) {
	case domain.QuestionView:
		fmt.Fprintf(v.out, "\n%s  [%d/%d]\n%s\n", v.title, f.Index+1, f.Total, f.Text)
		for _, a := range f.Answers {
			mark := " "
			if f.Selected != nil && *f.Selected == a.Index {
				mark = "*"
			}
			fmt.Fprintf(v.out, " %s %s) %s\n", mark, a.Letter, a.Text)
		}
		hint := "letter: answer, enter: next, r: retake, q: quit"
		if f.CanGoBack {
			hint = "letter: answer, enter: next, <: back, r: retake, q: quit"
		}
		fmt.Fprintf(v.out, "(%s)\n", hint)
	case domain.ResultView:
		p := f.Profile
		fmt.Fprintf(v.out, "\n%s %s\n", p.Icon, p.Name)
		if p.Subtitle != "" {
			fmt.Fprintln(v.out, p.Subtitle)
		}
		if p.Description != "" {
			fmt.Fprintln(v.out, p.Description)
		}
		for _, t := range p.Traits {
			fmt.Fprintf(v.out, "  %s: %s\n", t.Label, t.Value)
		}
		ids := make([]string, 0, len(f.Scores))
		for id := range f.Scores {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(v.out, "  %-12s %d\n", id, f.Scores[id])
		}
		fmt.Fprintf(v.out, "\n%s\n(r: retake, q: quit)\n", f.ShareText)
	}
}

func (v terminalView) Notify(message string) {
	fmt.Fprintf(v.out, "! %s\n", message)
}

// playQuiz runs one attempt against the lines read from in. Reading stops at
// q or at the end of input.
func playQuiz(def domain.Definition, in io.Reader, out io.Writer, reporter engine.Reporter) error {
	view := terminalView{out: out, title: def.Title}
	opts := []engine.Option{engine.WithView(view), engine.WithNotifier(view)}
	if reporter != nil {
		opts = append(opts, engine.WithReporter(reporter))
	}
	e, err := engine.New(def, opts...)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		var err error
		switch strings.ToLower(input) {
		case "q", "quit":
			return nil
		case "r", "retake":
			e.Retake()
		case "<", "back":
			err = e.GoBack()
		case "":
			err = e.Advance()
		default:
			err = selectByLetter(e, input)
		}
		switch {
		case err == nil, errors.Is(err, domain.ErrAnswerRequired):
		case errors.Is(err, domain.ErrQuizAlreadyComplete):
			fmt.Fprintln(out, "The quiz is complete. Press r to retake or q to quit.")
		default:
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func selectByLetter(e *engine.Engine, input string) error {
	if len(input) != 1 {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAnswerIndex, input)
	}
	c := strings.ToLower(input)[0]
	if c < 'a' || c > 'z' {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAnswerIndex, input)
	}
	return e.SelectAndAdvance(int(c - 'a'))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
