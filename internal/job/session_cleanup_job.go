package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/repo"
)

// SessionCleanupJob purges expired rows of the db session store.
type SessionCleanupJob struct {
	sessions *repo.SessionRepo
	now      func() time.Time
}

func NewSessionCleanupJob(sessions *repo.SessionRepo) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, now: time.Now}
}

func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}
	removed, err := j.sessions.DeleteExpired(ctx, j.now().UnixMilli())
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired sessions removed", zap.Int64("count", removed))
	}
	return nil
}
