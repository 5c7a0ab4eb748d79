package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/admarket/moderation/internal/core"
	"github.com/admarket/moderation/internal/data"
	"github.com/admarket/moderation/internal/domain/model"
	"github.com/admarket/moderation/internal/mocks"
)

type workerFixture struct {
	ctrl     *gomock.Controller
	consumer *mocks.MockWorkConsumer
	tasks    *mocks.MockTaskRepository
	listings *mocks.MockListingRepository
	scorer   *mocks.MockScorer
	dlq      *mocks.MockPublisher
	slept    []time.Duration
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &workerFixture{
		ctrl:     ctrl,
		consumer: mocks.NewMockWorkConsumer(ctrl),
		tasks:    mocks.NewMockTaskRepository(ctrl),
		listings: mocks.NewMockListingRepository(ctrl),
		scorer:   mocks.NewMockScorer(ctrl),
		dlq:      mocks.NewMockPublisher(ctrl),
	}
}

func (f *workerFixture) runner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(RunnerOptions{
		Consumer: f.consumer,
		Tasks:    f.tasks,
		Listings: f.listings,
		Scorer:   f.scorer,
		DLQ:      f.dlq,
		Logger:   slog.New(slog.DiscardHandler),
		Sleep: func(ctx context.Context, d time.Duration) error {
			f.slept = append(f.slept, d)
			return ctx.Err()
		},
	})
	require.NoError(t, err)
	return r
}

func pendingTask(id, listingID int64) *model.Task {
	return &model.Task{
		ID:        id,
		ListingID: listingID,
		Status:    model.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestNewRunner_RequiresDependencies(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)
}

func TestProcessMessage_Success(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42, Timestamp: time.Now().UTC()}
	listing := &model.Listing{ID: 7, SellerID: 1, Description: "rug", Category: 3, ImagesQty: 2}
	decision := model.Decision{IsViolation: false, Probability: 0.02}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil)
	f.scorer.EXPECT().Score(core.FeaturesFromListing(listing)).Return(decision, nil)
	f.tasks.EXPECT().Complete(gomock.Any(), int64(42), decision).Return(nil)

	r.processMessage(context.Background(), msg)

	assert.Empty(t, f.slept)
}

func TestProcessMessage_TaskNotFound_DroppedWithoutDLQ(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(nil, data.ErrTaskNotFound)

	r.processMessage(context.Background(), msg)

	assert.Empty(t, f.slept)
}

func TestProcessMessage_TaskAlreadyTerminal_DroppedWithoutDLQ(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(nil, data.ErrTaskNotPending)

	r.processMessage(context.Background(), msg)

	assert.Empty(t, f.slept)
}

func TestProcessMessage_ListingMissing_FailsAndDeadLettersImmediately(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(nil, data.ErrListingNotFound)
	f.tasks.EXPECT().Fail(gomock.Any(), int64(42), gomock.Any()).Return(nil)
	f.dlq.EXPECT().
		SendToDLQ(gomock.Any(), msg, gomock.Any(), 0).
		DoAndReturn(func(_ context.Context, _ model.WorkMessage, errMsg string, _ int) error {
			assert.Contains(t, errMsg, "item_id=7")
			return nil
		})

	r.processMessage(context.Background(), msg)

	assert.Empty(t, f.slept, "permanent failures must not be retried")
}

func TestProcessMessage_TransientErrors_ExhaustRetriesThenDeadLetter(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	listing := &model.Listing{ID: 7}
	scoreErr := errors.New("model backend down")

	// 4 attempts total: the first plus one per retry.
	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil).Times(4)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil).Times(4)
	f.scorer.EXPECT().Score(gomock.Any()).Return(model.Decision{}, scoreErr).Times(4)
	f.tasks.EXPECT().Fail(gomock.Any(), int64(42), gomock.Any()).Return(nil)
	f.dlq.EXPECT().
		SendToDLQ(gomock.Any(), msg, gomock.Any(), 3).
		DoAndReturn(func(_ context.Context, _ model.WorkMessage, errMsg string, _ int) error {
			assert.Contains(t, errMsg, "model backend down")
			return nil
		})

	r.processMessage(context.Background(), msg)

	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, f.slept)
}

func TestProcessMessage_TransientErrorThenSuccess(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	listing := &model.Listing{ID: 7}
	decision := model.Decision{IsViolation: true, Probability: 0.97}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil).Times(2)
	gomock.InOrder(
		f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(nil, errors.New("connection reset")),
		f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil),
	)
	f.scorer.EXPECT().Score(gomock.Any()).Return(decision, nil)
	f.tasks.EXPECT().Complete(gomock.Any(), int64(42), decision).Return(nil)

	r.processMessage(context.Background(), msg)

	assert.Equal(t, []time.Duration{time.Second}, f.slept)
}

func TestProcessMessage_CompleteFails_RetriesSameMessage(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	listing := &model.Listing{ID: 7}
	decision := model.Decision{Probability: 0.1}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil).Times(2)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil).Times(2)
	f.scorer.EXPECT().Score(gomock.Any()).Return(decision, nil).Times(2)
	gomock.InOrder(
		f.tasks.EXPECT().Complete(gomock.Any(), int64(42), decision).Return(errors.New("deadlock detected")),
		f.tasks.EXPECT().Complete(gomock.Any(), int64(42), decision).Return(nil),
	)

	r.processMessage(context.Background(), msg)

	assert.Equal(t, []time.Duration{time.Second}, f.slept)
}

func TestProcessMessage_TaskFailedBetweenRetries_Dropped(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	// Another actor resolved the task between attempts: the retry loop drops
	// the message instead of dead-lettering it.
	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	gomock.InOrder(
		f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(nil, errors.New("timeout")),
		f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(nil, data.ErrTaskNotPending),
	)

	r.processMessage(context.Background(), msg)

	assert.Equal(t, []time.Duration{time.Second}, f.slept)
}

func TestProcessMessage_DeadLetterPublishFailure_DoesNotUndoTaskFailure(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(nil, data.ErrListingNotFound)
	f.tasks.EXPECT().Fail(gomock.Any(), int64(42), gomock.Any()).Return(nil)
	f.dlq.EXPECT().SendToDLQ(gomock.Any(), msg, gomock.Any(), 0).Return(errors.New("broker down"))

	r.processMessage(context.Background(), msg)
}

func TestProcessMessage_ShortScheduleReusesLastDelay(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()

	var slept []time.Duration
	r, err := NewRunner(RunnerOptions{
		Consumer:    f.consumer,
		Tasks:       f.tasks,
		Listings:    f.listings,
		Scorer:      f.scorer,
		DLQ:         f.dlq,
		Logger:      slog.New(slog.DiscardHandler),
		MaxRetries:  3,
		RetryDelays: []time.Duration{2 * time.Second},
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})
	require.NoError(t, err)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(nil, errors.New("timeout")).Times(4)
	f.tasks.EXPECT().Fail(gomock.Any(), int64(42), gomock.Any()).Return(nil)
	f.dlq.EXPECT().SendToDLQ(gomock.Any(), msg, gomock.Any(), 3).Return(nil)

	r.processMessage(context.Background(), msg)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, slept)
}

func TestProcessMessage_CachesCompletedResult(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()

	cacheRepo := mocks.NewMockCacheRepository(f.ctrl)
	r, err := NewRunner(RunnerOptions{
		Consumer: f.consumer,
		Tasks:    f.tasks,
		Listings: f.listings,
		Scorer:   f.scorer,
		DLQ:      f.dlq,
		Cache:    core.NewResultCache(core.ResultCacheOptions{Repo: cacheRepo, Logger: slog.New(slog.DiscardHandler)}),
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	msg := model.WorkMessage{ItemID: 7, TaskID: 42}
	listing := &model.Listing{ID: 7}
	decision := model.Decision{IsViolation: true, Probability: 0.93}

	f.tasks.EXPECT().ResolvePending(gomock.Any(), int64(42)).Return(pendingTask(42, 7), nil)
	f.listings.EXPECT().GetOpenByID(gomock.Any(), int64(7)).Return(listing, nil)
	f.scorer.EXPECT().Score(gomock.Any()).Return(decision, nil)
	f.tasks.EXPECT().Complete(gomock.Any(), int64(42), decision).Return(nil)
	cacheRepo.EXPECT().
		Set(gomock.Any(), "moderation_result:42", gomock.Any(), core.DefaultCacheTTL).
		DoAndReturn(func(_ context.Context, _ string, raw []byte, _ time.Duration) error {
			assert.Contains(t, string(raw), `"status":"completed"`)
			assert.Contains(t, string(raw), `"is_violation":true`)
			return nil
		})

	r.processMessage(context.Background(), msg)
}

func TestRun_StopsCleanlyOnContextCancel(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.consumer.EXPECT().
		Fetch(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (model.WorkMessage, error) {
			cancel()
			return model.WorkMessage{}, context.Canceled
		})

	err := r.Run(ctx)
	require.NoError(t, err)
}

func TestRun_ReturnsConsumerError(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.ctrl.Finish()
	r := f.runner(t)

	f.consumer.EXPECT().
		Fetch(gomock.Any()).
		Return(model.WorkMessage{}, errors.New("broker unreachable"))

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unreachable")
}
