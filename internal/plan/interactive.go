package plan

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PromptConfig holds the IO for interactive plan configuration.
type PromptConfig struct {
	Reader *bufio.Reader
	Writer io.Writer

	DefaultDays  int
	DefaultSkill Skill
}

// PromptOptions asks the user for plan length and skill level. Empty input
// accepts the defaults; invalid input is re-prompted a bounded number of
// times before falling back.
func PromptOptions(cfg PromptConfig) (Options, error) {
	days, err := promptDays(cfg)
	if err != nil {
		return Options{}, err
	}
	skill, err := promptSkill(cfg)
	if err != nil {
		return Options{}, err
	}
	return Options{Days: days, Skill: skill}, nil
}

const maxPromptAttempts = 3

func promptDays(cfg PromptConfig) (int, error) {
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Fprintf(cfg.Writer, "How many days do you want to spend? [%d]: ", cfg.DefaultDays)
		input, err := readInput(cfg.Reader)
		if err != nil {
			return 0, fmt.Errorf("read days: %w", err)
		}
		if input == "" {
			return ClampDays(cfg.DefaultDays), nil
		}
		days, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(cfg.Writer, "Please enter a number between %d and %d.\n", MinDays, MaxDays)
			continue
		}
		return ClampDays(days), nil
	}
	fmt.Fprintf(cfg.Writer, "Using the default of %d days.\n", cfg.DefaultDays)
	return ClampDays(cfg.DefaultDays), nil
}

func promptSkill(cfg PromptConfig) (Skill, error) {
	fmt.Fprintf(cfg.Writer, "Skill level (beginner/intermediate/advanced) [%s]: ", cfg.DefaultSkill)
	input, err := readInput(cfg.Reader)
	if err != nil {
		return "", fmt.Errorf("read skill: %w", err)
	}
	if input == "" {
		return ParseSkill(string(cfg.DefaultSkill)), nil
	}
	return ParseSkill(input), nil
}

// readInput reads one line and trims it. EOF with a partial line still
// returns the line so piped input works.
func readInput(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	if err == io.EOF {
		return strings.TrimSpace(input), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
