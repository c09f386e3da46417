package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/submission"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeIdempotencyStore struct {
	claimed  map[string]bool
	released []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{claimed: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) ClaimIdempotencyKey(key string, _ time.Duration) (bool, error) {
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) ReleaseIdempotencyKey(key string) error {
	delete(s.claimed, key)
	s.released = append(s.released, key)
	return nil
}

type fakeEmailSender struct {
	failures int
	sent     int
}

func (s *fakeEmailSender) send() error {
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp: connection reset")
	}
	s.sent++
	return nil
}

func (s *fakeEmailSender) SendReviewerNotification([]string, string, int, string) error {
	return s.send()
}

func (s *fakeEmailSender) SendDecisionEmail(string, string, string, string) error {
	return s.send()
}

func reviewerJob(t *testing.T) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(submission.ReviewerNotificationPayload{
		SubmissionID: uuid.New(),
		Version:      2,
		Title:        "Wireless Headphones",
		VersionNotes: "swapped the hero image",
	})
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New(), Type: submission.JobTypeNotifyReviewers, Payload: payload}
}

func TestReviewerNotificationReleasesKeyOnSendFailure(t *testing.T) {
	t.Setenv("REVIEWER_EMAILS", "review@crescendo.example")

	store := newFakeIdempotencyStore()
	sender := &fakeEmailSender{failures: 1}
	handler := &NotificationJob{redis: store, emailSvc: sender}

	job := reviewerJob(t)

	// The first attempt fails to send; the claim must be given back so the
	// queue's retry is not mistaken for a duplicate.
	err := handler.ProcessReviewerNotification(context.Background(), job)
	require.Error(t, err)
	assert.Len(t, store.released, 1)
	assert.Empty(t, store.claimed)

	// The retry delivers.
	require.NoError(t, handler.ProcessReviewerNotification(context.Background(), job))
	assert.Equal(t, 1, sender.sent)
}

func TestReviewerNotificationSkipsDuplicateAfterSuccess(t *testing.T) {
	t.Setenv("REVIEWER_EMAILS", "review@crescendo.example")

	store := newFakeIdempotencyStore()
	sender := &fakeEmailSender{}
	handler := &NotificationJob{redis: store, emailSvc: sender}

	job := reviewerJob(t)
	require.NoError(t, handler.ProcessReviewerNotification(context.Background(), job))
	require.NoError(t, handler.ProcessReviewerNotification(context.Background(), job))

	assert.Equal(t, 1, sender.sent)
	assert.Empty(t, store.released)
}

func TestReviewerNotificationWithoutConfiguredReviewers(t *testing.T) {
	t.Setenv("REVIEWER_EMAILS", "")

	store := newFakeIdempotencyStore()
	sender := &fakeEmailSender{}
	handler := &NotificationJob{redis: store, emailSvc: sender}

	require.NoError(t, handler.ProcessReviewerNotification(context.Background(), reviewerJob(t)))
	assert.Zero(t, sender.sent)
	assert.Empty(t, store.claimed)
}

func TestDecisionNotificationReleasesKeyOnSendFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	subID := uuid.New()
	submissionRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "submitter_email", "title"}).
			AddRow(subID.String(), "maker@example.com", "Wireless Headphones")
	}
	mock.ExpectQuery(`SELECT (.+) FROM "reward_submissions" WHERE id = `).
		WillReturnRows(submissionRows())
	mock.ExpectQuery(`SELECT (.+) FROM "reward_submissions" WHERE id = `).
		WillReturnRows(submissionRows())

	store := newFakeIdempotencyStore()
	sender := &fakeEmailSender{failures: 1}
	handler := &NotificationJob{db: db, redis: store, emailSvc: sender}

	payload, err := json.Marshal(submission.DecisionNotificationPayload{
		SubmissionID: subID,
		Title:        "Wireless Headphones",
		Status:       models.SubmissionStatusRejected,
		Reason:       "image quality too low",
	})
	require.NoError(t, err)
	job := &queue.Job{ID: uuid.New(), Type: submission.JobTypeNotifyDecision, Payload: payload}

	require.Error(t, handler.ProcessDecisionNotification(context.Background(), job))
	assert.Len(t, store.released, 1)

	require.NoError(t, handler.ProcessDecisionNotification(context.Background(), job))
	assert.Equal(t, 1, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
