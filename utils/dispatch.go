package utils

// DispatchResult is the outcome of one best-effort OTP send. The caller
// decides visibly whether to surface or discard Err; senders never panic or
// block the login flow on delivery problems.
type DispatchResult struct {
	Sent bool
	Err  error
}
