package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"reelshare/domain/dto"
	"reelshare/domain/model"
)

type MockReelRepository struct {
	mock.Mock
}

func (m *MockReelRepository) Create(ctx context.Context, reel *model.Reel) error {
	return m.Called(ctx, reel).Error(0)
}

func (m *MockReelRepository) GetByID(ctx context.Context, id string) (*model.Reel, error) {
	args := m.Called(ctx, id)
	return reelArg(args, 0), args.Error(1)
}

func (m *MockReelRepository) FindByShortcode(ctx context.Context, shortcode string, submittedBy string) (*model.Reel, error) {
	args := m.Called(ctx, shortcode, submittedBy)
	return reelArg(args, 0), args.Error(1)
}

func (m *MockReelRepository) List(ctx context.Context, q dto.ReelListQuery) ([]*model.Reel, int64, error) {
	args := m.Called(ctx, q)
	reels, _ := args.Get(0).([]*model.Reel)
	return reels, args.Get(1).(int64), args.Error(2)
}

func (m *MockReelRepository) Complete(ctx context.Context, id string, payload *model.ReelPayload, failure *model.FailureReason) (*model.Reel, error) {
	args := m.Called(ctx, id, payload, failure)
	return reelArg(args, 0), args.Error(1)
}

func (m *MockReelRepository) ResetForRetry(ctx context.Context, id string) (*model.Reel, error) {
	args := m.Called(ctx, id)
	return reelArg(args, 0), args.Error(1)
}

func (m *MockReelRepository) MarkAttempt(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReelRepository) IncrementViews(ctx context.Context, id string) (*model.Reel, error) {
	args := m.Called(ctx, id)
	return reelArg(args, 0), args.Error(1)
}

func (m *MockReelRepository) Delete(ctx context.Context, id string, submittedBy string) (bool, error) {
	args := m.Called(ctx, id, submittedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockReelRepository) CountByStatus(ctx context.Context, submittedBy string) (model.ReelStats, error) {
	args := m.Called(ctx, submittedBy)
	return args.Get(0).(model.ReelStats), args.Error(1)
}

func (m *MockReelRepository) SumViews(ctx context.Context, submittedBy string) (int64, error) {
	args := m.Called(ctx, submittedBy)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReelRepository) CountSince(ctx context.Context, status model.ReelStatus, since time.Time) (int64, error) {
	args := m.Called(ctx, status, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReelRepository) CountSubmitters(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReelRepository) FindStalePending(ctx context.Context, olderThan time.Time, limit int64) ([]*model.Reel, error) {
	args := m.Called(ctx, olderThan, limit)
	reels, _ := args.Get(0).([]*model.Reel)
	return reels, args.Error(1)
}

func reelArg(args mock.Arguments, i int) *model.Reel {
	if r, ok := args.Get(i).(*model.Reel); ok {
		return r
	}
	return nil
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	a, _ := args.Get(0).(*model.Account)
	return a, args.Error(1)
}

func (m *MockAccountRepository) ListIDsByRole(ctx context.Context, role model.Role) ([]string, error) {
	args := m.Called(ctx, role)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockAccountRepository) GetPublicByIDs(ctx context.Context, ids []string) (map[string]model.AccountPublic, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).(map[string]model.AccountPublic)
	return out, args.Error(1)
}

type MockPushRepository struct {
	mock.Mock
}

func (m *MockPushRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockPushRepository) DeleteForAccount(ctx context.Context, endpoint, accountID string) (bool, error) {
	args := m.Called(ctx, endpoint, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPushRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	return m.Called(ctx, endpoint).Error(0)
}

func (m *MockPushRepository) ListByAccounts(ctx context.Context, accountIDs []string) ([]*model.PushSubscription, error) {
	args := m.Called(ctx, accountIDs)
	subs, _ := args.Get(0).([]*model.PushSubscription)
	return subs, args.Error(1)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, sub *model.PushSubscription, message model.PushMessage) error {
	return m.Called(ctx, sub, message).Error(0)
}

func (m *MockPushSender) PublicKey() string {
	return m.Called().String(0)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, sourceURL string) (*model.ReelPayload, error) {
	args := m.Called(ctx, sourceURL)
	p, _ := args.Get(0).(*model.ReelPayload)
	return p, args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, shortcode string) (*model.ReelPayload, error) {
	args := m.Called(ctx, shortcode)
	p, _ := args.Get(0).(*model.ReelPayload)
	return p, args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, shortcode string, payload *model.ReelPayload) error {
	return m.Called(ctx, shortcode, payload).Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event model.ReelEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error { return nil }

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastReelStatus(reel *model.Reel) {
	m.Called(reel)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, req dto.SendPushRequest) (*dto.SendPushResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*dto.SendPushResult)
	return r, args.Error(1)
}

func (m *MockNotifier) NotifyReelResolved(ctx context.Context, reel *model.Reel) (*dto.SendPushResult, error) {
	args := m.Called(ctx, reel)
	r, _ := args.Get(0).(*dto.SendPushResult)
	return r, args.Error(1)
}

// queueRecorder collects tasks so tests decide when they run.
type queueRecorder struct {
	tasks []func(ctx context.Context)
	err   error
}

func (q *queueRecorder) Submit(task func(ctx context.Context)) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *queueRecorder) runAll() {
	for _, t := range q.tasks {
		t(context.Background())
	}
	q.tasks = nil
}
