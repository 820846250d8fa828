package http_test

import (
	"context"

	"reelshare/domain/dto"
	"reelshare/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockReelUsecase struct {
	mock.Mock
}

func (m *MockReelUsecase) Submit(ctx context.Context, accountID, link string) (*dto.SubmitReelResponse, error) {
	args := m.Called(ctx, accountID, link)
	if r := args.Get(0); r != nil {
		return r.(*dto.SubmitReelResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) BulkSubmit(ctx context.Context, accountID string, entries []string) (*dto.BulkSubmitResponse, error) {
	args := m.Called(ctx, accountID, entries)
	if r := args.Get(0); r != nil {
		return r.(*dto.BulkSubmitResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) List(ctx context.Context, q dto.ReelListQuery) (*dto.ReelListResponse, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*dto.ReelListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) ListMine(ctx context.Context, accountID string, q dto.ReelListQuery) (*dto.MyReelsResponse, error) {
	args := m.Called(ctx, accountID, q)
	if r := args.Get(0); r != nil {
		return r.(*dto.MyReelsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) Get(ctx context.Context, id string, role model.Role) (*model.Reel, error) {
	args := m.Called(ctx, id, role)
	if r := args.Get(0); r != nil {
		return r.(*model.Reel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) Stats(ctx context.Context, accountID string, role model.Role) (interface{}, error) {
	args := m.Called(ctx, accountID, role)
	return args.Get(0), args.Error(1)
}

func (m *MockReelUsecase) Retry(ctx context.Context, accountID, id string) (*model.Reel, error) {
	args := m.Called(ctx, accountID, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Reel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) Delete(ctx context.Context, accountID, id string) error {
	return m.Called(ctx, accountID, id).Error(0)
}

func (m *MockReelUsecase) ResolveReel(ctx context.Context, reel *model.Reel) {
	m.Called(ctx, reel)
}

func (m *MockReelUsecase) ResolveLink(ctx context.Context, accountID, link string) (*model.ReelPayload, error) {
	args := m.Called(ctx, accountID, link)
	if p := args.Get(0); p != nil {
		return p.(*model.ReelPayload), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReelUsecase) SweepStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockAccountUsecase struct {
	mock.Mock
}

func (m *MockAccountUsecase) Register(ctx context.Context, req model.ReqRegister) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountUsecase) Login(ctx context.Context, req model.ReqLogin) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountUsecase) Me(ctx context.Context, accountID string) (*model.AccountPublic, error) {
	args := m.Called(ctx, accountID)
	if r := args.Get(0); r != nil {
		return r.(*model.AccountPublic), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPushUsecase struct {
	mock.Mock
}

func (m *MockPushUsecase) Subscribe(ctx context.Context, accountID string, req dto.SubscribeRequest) error {
	return m.Called(ctx, accountID, req).Error(0)
}

func (m *MockPushUsecase) Unsubscribe(ctx context.Context, accountID, endpoint string) error {
	return m.Called(ctx, accountID, endpoint).Error(0)
}

func (m *MockPushUsecase) VAPIDPublicKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type MockNotificationUsecase struct {
	mock.Mock
}

func (m *MockNotificationUsecase) Send(ctx context.Context, req dto.SendPushRequest) (*dto.SendPushResult, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.SendPushResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationUsecase) NotifyReelResolved(ctx context.Context, reel *model.Reel) (*dto.SendPushResult, error) {
	args := m.Called(ctx, reel)
	if r := args.Get(0); r != nil {
		return r.(*dto.SendPushResult), args.Error(1)
	}
	return nil, args.Error(1)
}
