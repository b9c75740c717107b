package lifx

import (
	"context"

	"github.com/korovkin/limiter"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

// DefaultMaxConcurrent bounds SendAll when it is given a limit below one
const DefaultMaxConcurrent = 4

// Outcome is the result of one request sent by SendAll
type Outcome struct {
	Request  *Request
	Response *Response
	Err      error
}

/*
 *  SendAll sends independent requests with at most maxConcurrent in flight,
 *  and returns their outcomes in the order given.  Every request runs its
 *  own retry loop; rate limits seen by one request do not slow the others.
 */
func SendAll(ctx context.Context, maxConcurrent int, reqs ...Sender) []Outcome {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}

	outcomes := make([]Outcome, len(reqs))
	limit := limiter.NewConcurrencyLimiter(maxConcurrent)

	for i, s := range reqs {
		i, req := i, s.Request()
		outcomes[i].Request = req

		limit.ExecuteWithTicket(func(ticket int) {
			logging.Logger(ctx).Debugf("batch: ticket %d sending %s %s", ticket, req.Method(), req.Path())
			outcomes[i].Response, outcomes[i].Err = req.Send(ctx)
		})
	}

	limit.Wait()
	return outcomes
}
