package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
	"github.com/developer-overheid-nl/don-image-register/pkg/tools"
	"github.com/robfig/cron/v3"
)

// ReportWindow is how far back each scheduled report looks.
const ReportWindow = 24 * time.Hour

// ActivitySource is satisfied by services.ImageService.
type ActivitySource interface {
	ActivitySummary(ctx context.Context, since time.Time) ([]models.ActorActivity, error)
}

// ScheduleAuditReport sets up a cron job that logs the image mutations per
// actor of the last ReportWindow. The job stops when ctx is done.
func ScheduleAuditReport(ctx context.Context, src ActivitySource, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		tools.Dispatch(ctx, "audit_report", func(ctx context.Context) error {
			_, err := RunAuditReport(ctx, src, time.Now().Add(-ReportWindow))
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("invalid audit report schedule %q: %w", schedule, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}

// RunAuditReport logs one line per active actor since the given time.
func RunAuditReport(ctx context.Context, src ActivitySource, since time.Time) ([]models.ActorActivity, error) {
	rows, err := src.ActivitySummary(ctx, since)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		logging.Log.Info().
			Str("actor", row.Username).
			Int("created", row.Created).
			Int("updated", row.Updated).
			Int("deleted", row.Deleted).
			Time("since", since).
			Msg("image audit report")
	}
	if len(rows) == 0 {
		logging.Log.Info().Time("since", since).Msg("image audit report: no activity")
	}
	return rows, nil
}
