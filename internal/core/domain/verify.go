package domain

// VerifyStatus is the outcome of a package verification.
type VerifyStatus string

const (
	// VerifySuccess indicates the example built and exited successfully.
	VerifySuccess VerifyStatus = "success"
	// VerifyFailed indicates the consumer did not build or the example misbehaved.
	VerifyFailed VerifyStatus = "failed"
	// VerifySkipped indicates the host cannot run binaries for the target.
	VerifySkipped VerifyStatus = "skipped"
)

// VerifyResult is returned by the package verifier.
type VerifyResult struct {
	Reference Reference
	Status    VerifyStatus
	// Reason explains a failure or a skip.
	Reason string
	// Err is the cause of a failure.
	Err error
	Run *RunResult
}
