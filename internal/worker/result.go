package worker

// Status classifies a task attempt outcome for the worker loop.
type Status int

const (
	// StatusOk means the task finished; the message is acknowledged.
	StatusOk Status = iota
	// StatusRetryable means the task failed transiently and should be
	// redelivered after backoff, until the retry budget runs out.
	StatusRetryable
	// StatusTerminal means the task can never succeed (e.g. the record no
	// longer exists); it is dropped without retry.
	StatusTerminal
)

// Result is the explicit outcome a task handler returns, interpreted by the
// worker loop to decide between acknowledgement, delayed redelivery and
// dropping.
type Result struct {
	Status Status
	Err    error
}

func Ok() Result {
	return Result{Status: StatusOk}
}

func Retryable(err error) Result {
	return Result{Status: StatusRetryable, Err: err}
}

func Terminal(err error) Result {
	return Result{Status: StatusTerminal, Err: err}
}
