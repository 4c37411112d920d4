package confirmation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"experiment-setup/internal/display"
	"experiment-setup/internal/errors"

	"golang.org/x/term"
)

// Answer the user must type to approve a restore
const Answer = "yes"

// DeclinedMessage is printed when a restore is not approved
const DeclinedMessage = "The database has not been changed."

// ConfirmationService asks the user before destructive operations
type ConfirmationService interface {
	ConfirmRestore(ctx context.Context, target string, assumeYes bool) (bool, error)
}

// confirmationService implements the ConfirmationService interface
type confirmationService struct {
	reader      *bufio.Reader
	writer      io.Writer
	colors      display.ColorSystem
	interactive bool
}

// NewConfirmationServiceWithIO creates a service over arbitrary streams
func NewConfirmationServiceWithIO(in io.Reader, out io.Writer, interactive bool, colors display.ColorSystem) ConfirmationService {
	if colors == nil {
		colors = display.NewColorSystem(false, out)
	}
	return &confirmationService{
		reader:      bufio.NewReader(in),
		writer:      out,
		colors:      colors,
		interactive: interactive,
	}
}

// IsInteractive reports whether f is attached to a terminal
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ConfirmRestore shows the resolved target and waits for the user to type "yes".
// assumeYes approves without prompting. Without a terminal the prompt is refused.
func (cs *confirmationService) ConfirmRestore(ctx context.Context, target string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}

	if !cs.interactive {
		appErr := errors.NewAppError(errors.ErrorTypeInterruption, "refusing to restore without confirmation", nil)
		appErr.UserMessage = "stdin is not a terminal; rerun with --yes to restore without a prompt"
		return false, appErr
	}

	fmt.Fprintf(cs.writer, "Are you sure that this is the correct filename? '%s'\n", target)
	fmt.Fprint(cs.writer, cs.colors.Colorize(fmt.Sprintf("type '%s' to confirm: ", Answer), display.ColorBold))

	inputChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	go func() {
		input, err := cs.reader.ReadString('\n')
		if err != nil && !(err == io.EOF && input != "") {
			errorChan <- err
			return
		}
		inputChan <- input
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cs.writer)
		return false, errors.NewAppError(errors.ErrorTypeInterruption, "restore cancelled by user", ctx.Err())
	case err := <-errorChan:
		if err == io.EOF {
			fmt.Fprintln(cs.writer)
			return false, nil
		}
		return false, errors.NewAppError(errors.ErrorTypeInterruption, "failed to read confirmation", err)
	case input := <-inputChan:
		return parseConfirmationInput(input), nil
	}
}

// parseConfirmationInput accepts only the exact answer, ignoring the line ending
func parseConfirmationInput(input string) bool {
	return strings.TrimRight(input, "\r\n") == Answer
}
