package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docvault/internal/model"
	repoMocks "docvault/internal/repository/mocks"
)

func TestAuditLog_AppendFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockAuditLogRepository)
	mRepo.On("Append", ctx, mock.AnythingOfType("*model.AuditLogEntry")).Return(errors.New("disk full"))

	reg := prometheus.NewRegistry()
	audit, err := NewAuditLog(mRepo, new(repoMocks.MockUserDirectory), zap.NewNop(), reg)
	require.NoError(t, err)

	assert.NotPanics(t, func() { audit.Append(ctx, "U1", "uploaded a.txt") })
	assert.Equal(t, float64(1), testutil.ToFloat64(audit.failures))
	mRepo.AssertExpectations(t)
}

func TestAuditLog_AppendBuildsEntry(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	mRepo := new(repoMocks.MockAuditLogRepository)
	mRepo.On("Append", ctx, &model.AuditLogEntry{ID: "log-1", UserID: "U1", Action: "deleted a.txt", Timestamp: at}).Return(nil)

	audit, err := NewAuditLog(mRepo, new(repoMocks.MockUserDirectory), nil, nil)
	require.NoError(t, err)
	audit.now = func() time.Time { return at }
	audit.newID = func() string { return "log-1" }

	audit.Append(ctx, "U1", "deleted a.txt")

	assert.Equal(t, float64(0), testutil.ToFloat64(audit.failures))
	mRepo.AssertExpectations(t)
}

func TestAuditLog_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewAuditLog(nil, nil, nil, reg)
	require.NoError(t, err)
	_, err = NewAuditLog(nil, nil, nil, reg)
	assert.Error(t, err)
}

func TestAuditLog_ListFor(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []model.AuditLogEntry{
		{ID: "1", UserID: "U1", Action: "uploaded a.txt", Timestamp: t0},
		{ID: "2", UserID: "U2", Action: "uploaded b.txt", Timestamp: t0.Add(time.Minute)},
		{ID: "3", UserID: "U9", Action: "deleted c.txt", Timestamp: t0.Add(2 * time.Minute)},
	}

	tests := []struct {
		name       string
		requester  model.Identity
		setupMocks func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory)
		wantIDs    []string
		wantNames  []string
		wantErr    error
	}{
		{
			name:      "admin sees everything newest first with usernames",
			requester: admin,
			setupMocks: func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory) {
				mRepo.On("List", ctx, "").Return(entries, nil)
				mUsers.On("FindByIDs", ctx, []string{"U1", "U2", "U9"}).Return(map[string]model.User{
					"U1": {ID: "U1", Username: "alice"},
					"U2": {ID: "U2", Username: "bob"},
				}, nil)
			},
			wantIDs:   []string{"3", "2", "1"},
			wantNames: []string{UnknownUser, "bob", "alice"},
		},
		{
			name:      "regular user is filtered to own entries",
			requester: alice,
			setupMocks: func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory) {
				mRepo.On("List", ctx, "U1").Return(entries[:1], nil)
				mUsers.On("FindByIDs", ctx, []string{"U1"}).Return(map[string]model.User{"U1": {ID: "U1", Username: "alice"}}, nil)
			},
			wantIDs:   []string{"1"},
			wantNames: []string{"alice"},
		},
		{
			name:      "directory failure degrades to unknown user",
			requester: alice,
			setupMocks: func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory) {
				mRepo.On("List", ctx, "U1").Return(entries[:1], nil)
				mUsers.On("FindByIDs", ctx, []string{"U1"}).Return(nil, errors.New("boom"))
			},
			wantIDs:   []string{"1"},
			wantNames: []string{UnknownUser},
		},
		{
			name:       "anonymous regular user is rejected",
			requester:  model.Identity{Role: model.RoleUser},
			setupMocks: func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory) {},
			wantErr:    ErrValidation,
		},
		{
			name:      "log read failure",
			requester: alice,
			setupMocks: func(mRepo *repoMocks.MockAuditLogRepository, mUsers *repoMocks.MockUserDirectory) {
				mRepo.On("List", ctx, "U1").Return(nil, errors.New("boom"))
			},
			wantErr: ErrPersistenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockAuditLogRepository)
			mUsers := new(repoMocks.MockUserDirectory)
			tt.setupMocks(mRepo, mUsers)
			audit, err := NewAuditLog(mRepo, mUsers, zap.NewNop(), nil)
			require.NoError(t, err)

			views, err := audit.ListFor(ctx, tt.requester)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, views)
				mRepo.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			var ids, names []string
			for _, v := range views {
				ids = append(ids, v.ID)
				names = append(names, v.Username)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantNames, names)
			mRepo.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestAuditLog_Clear(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockAuditLogRepository)
	mRepo.On("Clear", ctx).Return(errors.New("boom")).Once()
	mRepo.On("Clear", ctx).Return(nil).Once()
	audit, err := NewAuditLog(mRepo, nil, nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, audit.Clear(ctx), ErrPersistenceFailure)
	assert.NoError(t, audit.Clear(ctx))
	mRepo.AssertExpectations(t)
}
