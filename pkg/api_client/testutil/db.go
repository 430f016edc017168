package testutil

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/database"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Clock is a deterministic clock that advances a fixed step per reading.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

var clockStart = time.Date(2016, 2, 23, 18, 46, 5, 0, time.UTC)

func NewClock() *Clock {
	return &Clock{now: clockStart, step: time.Second}
}

// NewFrozenClock never advances.
func NewFrozenClock() *Clock {
	return &Clock{now: clockStart}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Peek returns the last handed out time without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewDB opens a private in-memory sqlite database with the audit callbacks
// installed. A single connection keeps every statement on the same memory
// database.
func NewDB(t *testing.T, policy audit.Policy, clock *Clock) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open(sqlite.DriverName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	opts := database.Options{
		Policy: policy,
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if clock != nil {
		opts.Now = clock.Now
	}
	db, err := database.Open(&sqlite.Dialector{Conn: sqlDB}, opts)
	require.NoError(t, err)
	return db
}

// CreateActor stores an actor for use as the acting user in tests.
func CreateActor(t *testing.T, db *gorm.DB, username string) *models.Actor {
	t.Helper()
	actor := &models.Actor{Username: username}
	require.NoError(t, db.Create(actor).Error)
	return actor
}
