package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/engine"
	"introxpection-quiz/internal/infra/file"
	"github.com/spf13/cobra"
)

// NewValidateCmd checks definition files without playing them.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE|DIR...",
		Short: "Validate quiz definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePaths(cmd.OutOrStdout(), args)
		},
	}
}

func validatePaths(out io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		files, err := expandPath(path)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		for _, f := range files {
			if !validateFile(out, f) {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d definition(s) failed validation", failed)
	}
	return nil
}

func validateFile(out io.Writer, path string) bool {
	def, err := file.ReadDefinition(path)
	if err == nil {
		err = engine.Validate(def)
	}
	var verr *engine.ValidationError
	switch {
	case err == nil:
		fmt.Fprintf(out, "ok   %s (%s: %d questions, %d profiles)\n", path, def.ID, len(def.Questions), len(def.Profiles))
		return true
	case errors.As(err, &verr):
		fmt.Fprintf(out, "FAIL %s\n", path)
		for _, p := range verr.Problems {
			fmt.Fprintf(out, "     - %s\n", p)
		}
	case errors.Is(err, domain.ErrInvalidConfiguration):
		fmt.Fprintf(out, "FAIL %v\n", err)
	default:
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
	}
	return false
}

func expandPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}
