package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-approval/internal/core/events"
	"github.com/frahmantamala/expense-approval/internal/expense"
	"github.com/frahmantamala/expense-approval/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "events",
	Short: "Workflow event commands",
	Long:  `Inspect the workflow events published on the in-process event bus.`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [submitted|approved|rejected]",
	Short:     "Publish a sample workflow event",
	Long:      `Publish a sample workflow event through the bus with the server's log subscriber attached, to check how it is recorded.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"submitted", "approved", "rejected"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventExpenseID int64
	eventReviewer  int64
)

var sampleEvents = map[string]struct {
	eventType string
	status    expense.Status
}{
	"submitted": {events.EventTypeExpenseSubmitted, expense.StatusSubmitted},
	"approved":  {events.EventTypeExpenseApproved, expense.StatusApproved},
	"rejected":  {events.EventTypeExpenseRejected, expense.StatusRejected},
}

func publishSampleEvent(kind string) error {
	sample, ok := sampleEvents[kind]
	if !ok {
		return fmt.Errorf("unknown event %q: want submitted, approved or rejected", kind)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	events.LogWorkflowEvents(bus, lg)

	var reviewer *int64
	if sample.status != expense.StatusSubmitted {
		reviewer = &eventReviewer
	}
	event := events.NewExpenseTransitionedEvent(sample.eventType, eventExpenseID, 1, int64(sample.status), 4250, "GBP", reviewer, time.Now().UTC())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}
	return bus.Drain(ctx)
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventExpenseID, "expense-id", 1, "expense id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventReviewer, "reviewer", 2, "reviewer id for approved and rejected events")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
