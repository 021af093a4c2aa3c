package cloudwatch

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// Status is the lifecycle state of one Insights query as observed by the
// executor. Transitions only move forward; TimedOut is synthesized locally
// when the wall-clock deadline elapses, the backend never reports it.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusRunning   Status = "Running"
	StatusComplete  Status = "Complete"
	StatusFailed    Status = "Failed"
	StatusCancelled Status = "Cancelled"
	StatusTimedOut  Status = "TimedOut"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}

// Result is the outcome of one executed query. Rows is populated only when
// the status is Complete.
type Result struct {
	QueryID string
	Status  Status
	Rows    [][]types.ResultField
	Elapsed time.Duration
}

const (
	defaultPollInterval = 1 * time.Second
	defaultDeadline     = 60 * time.Second
	// MaxResultRows bounds backend cost; the query itself carries the same
	// limit, but result growth is also observed incrementally so polling
	// can stop as soon as the cap is reached.
	MaxResultRows = 10000
)

// Executor submits an Insights query and drives the asynchronous
// completion protocol: poll every interval until the backend reports a
// terminal status, the row cap is reached, or the local deadline elapses.
// The wait is fully synchronous from the caller's perspective.
type Executor struct {
	api          InsightsAPI
	pollInterval time.Duration
	deadline     time.Duration
	logger       *log.Logger
}

func NewExecutor(api InsightsAPI, logger *log.Logger) *Executor {
	return &Executor{
		api:          api,
		pollInterval: defaultPollInterval,
		deadline:     defaultDeadline,
		logger:       logger,
	}
}

// Run starts a query over (queryString, logGroup, start, end) and blocks
// until it reaches a terminal state. start and end are UTC epoch seconds.
// Backend call errors abort the whole operation; anything other than a
// terminal status means "keep polling".
func (e *Executor) Run(ctx context.Context, logGroup, queryString string, start, end int64) (*Result, error) {
	began := time.Now()

	out, err := e.api.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(logGroup),
		QueryString:  aws.String(queryString),
		StartTime:    aws.Int64(start),
		EndTime:      aws.Int64(end),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start query on %s: %w", logGroup, err)
	}
	queryID := aws.ToString(out.QueryId)

	// The backend exposes no timeout primitive, so the deadline is watched
	// locally: a timer flips a stop flag that the poll loop reads each
	// iteration. The flag is shared between both goroutines and must be
	// atomic.
	var timedOut atomic.Bool
	timer := time.AfterFunc(e.deadline, func() { timedOut.Store(true) })
	defer timer.Stop()

	for {
		if timedOut.Load() {
			e.logger.Printf("query %s exceeded the %s deadline, giving up", queryID, e.deadline)
			return &Result{QueryID: queryID, Status: StatusTimedOut, Elapsed: time.Since(began)}, nil
		}

		res, err := e.api.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
			QueryId: aws.String(queryID),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch results for query %s: %w", queryID, err)
		}

		switch res.Status {
		case types.QueryStatusComplete:
			return &Result{QueryID: queryID, Status: StatusComplete, Rows: res.Results, Elapsed: time.Since(began)}, nil
		case types.QueryStatusFailed:
			return &Result{QueryID: queryID, Status: StatusFailed, Elapsed: time.Since(began)}, nil
		case types.QueryStatusCancelled:
			return &Result{QueryID: queryID, Status: StatusCancelled, Elapsed: time.Since(began)}, nil
		}

		// The backend caps rows too, but once the running result already
		// holds the cap there is nothing more to wait for.
		if len(res.Results) >= MaxResultRows {
			return &Result{QueryID: queryID, Status: StatusComplete, Rows: res.Results, Elapsed: time.Since(began)}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("polling of query %s interrupted: %w", queryID, ctx.Err())
		case <-time.After(e.pollInterval):
		}
	}
}

// MessageField extracts the value of a named field from one result row.
func MessageField(row []types.ResultField, name string) (string, bool) {
	for _, f := range row {
		if aws.ToString(f.Field) == name {
			return aws.ToString(f.Value), true
		}
	}
	return "", false
}
