package alerts

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const (
	goalDeadlineWindowDays = 7
	goalInfoProgress       = 0.8
)

// EvaluateGoals classifies each goal into at most one alert. Priority:
// crossed target (success) beats deadline proximity (warning) beats high
// progress (info). Goals with a non-positive target are skipped entirely.
// The success alert is transitional: it fires while the stored status
// still says active; persisting the completed status is the caller's job.
func EvaluateGoals(goals []core.Goal, now time.Time) []GoalAlert {
	out := make([]GoalAlert, 0, len(goals))
	for _, g := range goals {
		if g.TargetAmount.Cents <= 0 {
			continue
		}

		progress := float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents)

		var daysLeft *int
		if !g.Deadline.IsZero() {
			d := core.DaysLeft(g.Deadline, now)
			daysLeft = &d
		}

		alert := GoalAlert{
			ID:            g.ID,
			Source:        SourceGoal,
			Title:         g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Progress:      progress,
			DaysLeft:      daysLeft,
		}

		switch {
		case progress >= 1 && g.Status != core.GoalCompleted:
			alert.Level = LevelSuccess
			alert.Message = fmt.Sprintf("Congrats! You have reached your goal %q.", g.Name)
		case daysLeft != nil && *daysLeft <= goalDeadlineWindowDays && progress < 1:
			alert.Level = LevelWarning
			alert.Message = fmt.Sprintf("Only %d day(s) left for goal %q. You are at %d%% of target.",
				*daysLeft, g.Name, roundPercent(progress))
		case progress >= goalInfoProgress && progress < 1:
			alert.Level = LevelInfo
			alert.Message = fmt.Sprintf("You have completed %d%% of goal %q. Keep going!",
				roundPercent(progress), g.Name)
		default:
			continue
		}

		out = append(out, alert)
	}
	return out
}
