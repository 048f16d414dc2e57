package ai

import "context"

// CompletionObserver counts completion calls. Satisfied by
// observability.Metrics.
type CompletionObserver interface {
	ObserveCompletion(task, outcome string)
}

type instrumentedCompleter struct {
	next Completer
	obs  CompletionObserver
}

// InstrumentCompleter wraps a Completer with call metrics.
func InstrumentCompleter(next Completer, obs CompletionObserver) Completer {
	if obs == nil {
		return next
	}
	return &instrumentedCompleter{next: next, obs: obs}
}

func (c *instrumentedCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	out, err := c.next.Complete(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.obs.ObserveCompletion(string(req.Task), outcome)
	return out, err
}
