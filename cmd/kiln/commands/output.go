package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.trai.ch/kiln/internal/core/domain"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	skipColor    = color.New(color.FgYellow, color.Bold)
	dimColor     = color.New(color.Faint)
)

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// printRun writes a one-line summary of a lifecycle run.
func printRun(w io.Writer, label string, run *domain.RunResult) {
	fp := dimColor.Sprintf("(%s)", shortFingerprint(run.Fingerprint))
	if run.Succeeded() {
		_, _ = fmt.Fprintf(w, "%s %s %s\n", successColor.Sprint("built"), label, fp)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s %s: %s phase failed\n", failureColor.Sprint("failed"), label, fp, run.FailedPhase)
}

// printVerify writes the outcome of a verification.
func printVerify(w io.Writer, result *domain.VerifyResult) {
	switch result.Status {
	case domain.VerifySuccess:
		_, _ = fmt.Fprintf(w, "%s %s\n", successColor.Sprint("verified"), result.Reference)
	case domain.VerifySkipped:
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", skipColor.Sprint("skipped"), result.Reference, result.Reason)
	default:
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", failureColor.Sprint("failed"), result.Reference, result.Reason)
	}
}
