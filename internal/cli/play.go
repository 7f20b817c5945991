package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"chat-trivia-service/internal/quiz"
	"chat-trivia-service/internal/trivia"
	"github.com/spf13/cobra"
)

var errInputEnded = errors.New("input ended before the quiz finished")

// NewPlayCmd plays a trivia set found in a text file on the terminal.
func NewPlayCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a trivia set extracted from a text file",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return playText(string(text), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the trivia text, e.g. a saved chat reply")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func playText(text string, in io.Reader, out io.Writer) error {
	set, err := trivia.Parse(text)
	if err != nil {
		return err
	}
	notifier := quiz.NotifierFunc(func(title, description string) {
		fmt.Fprintf(out, "\n[%s] %s\n", title, description)
	})
	session, err := quiz.NewSession(set, notifier)
	if err != nil {
		return err
	}

	if set.Title != "" {
		fmt.Fprintln(out, set.Title)
	}
	if set.Description != "" {
		fmt.Fprintln(out, set.Description)
	}

	reader := bufio.NewReader(in)
	session.Start()
	for {
		snap := session.Snapshot()
		if snap.Phase != quiz.PhaseActive {
			break
		}
		printQuestion(out, snap)

		choice, err := readChoice(reader, out, snap.PresentedChoices)
		if err != nil {
			return err
		}
		session.SelectAnswer(choice)

		revealed := session.Snapshot()
		if *revealed.SelectedAnswer == revealed.CorrectAnswer {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect, correct answer: %s\n", revealed.CorrectAnswer)
		}
		session.Advance()
	}

	final := session.Snapshot()
	fmt.Fprintf(out, "Score: %d / %d\n", final.Score, final.Total)
	return nil
}

func printQuestion(out io.Writer, snap quiz.Snapshot) {
	fmt.Fprintf(out, "\nQuestion %d / %d\n%s\n", snap.CurrentIndex+1, snap.Total, snap.Question)
	for i, c := range snap.PresentedChoices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, c)
	}
}

// readChoice keeps prompting until a valid option number is entered.
func readChoice(reader *bufio.Reader, out io.Writer, choices []string) (string, error) {
	for {
		fmt.Fprintf(out, "Your answer (1-%d): ", len(choices))
		line, err := reader.ReadString('\n')
		if n, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		if err != nil {
			return "", errInputEnded
		}
		fmt.Fprintln(out, "Please enter one of the option numbers.")
	}
}
