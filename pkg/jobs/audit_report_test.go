package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rows  []models.ActorActivity
	err   error
	since time.Time
}

func (s *stubSource) ActivitySummary(ctx context.Context, since time.Time) ([]models.ActorActivity, error) {
	s.since = since
	return s.rows, s.err
}

func TestRunAuditReport(t *testing.T) {
	src := &stubSource{rows: []models.ActorActivity{{Username: "admin", Created: 2}}}
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows, err := jobs.RunAuditReport(context.Background(), src, since)
	require.NoError(t, err)
	assert.Equal(t, src.rows, rows)
	assert.Equal(t, since, src.since)
}

func TestRunAuditReport_Error(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	_, err := jobs.RunAuditReport(context.Background(), src, time.Now())
	require.EqualError(t, err, "db down")
}

func TestScheduleAuditReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := jobs.ScheduleAuditReport(ctx, &stubSource{}, "@daily")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = jobs.ScheduleAuditReport(ctx, &stubSource{}, "every tuesday")
	require.Error(t, err)
}
