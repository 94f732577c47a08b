package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApprovalFixture(t *testing.T) (*ApprovalService, *testutil.Store, *mockNotifier, *recordingPublisher) {
	store := testutil.NewStore()
	n := &mockNotifier{}
	n.On("UserDecided", mock.Anything, mock.Anything).Return(nil)
	pub := &recordingPublisher{}
	return NewApprovalService(testConfig(t), store, n, pub, nopLog), store, n, pub
}

func pendingIDs(t *testing.T, s *ApprovalService) []uuid.UUID {
	users, err := s.ListPending(context.Background(), contentAdmin)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestListPendingOrderedWithAbsoluteDocLinks(t *testing.T) {
	s, store, _, _ := newApprovalFixture(t)
	first := store.Add(model.User{Name: "A", StudentDocURL: "/uploads/a.pdf"})
	second := store.Add(model.User{Name: "B", StudentDocURL: "https://cdn.example.com/b.pdf"})
	store.Add(model.User{Name: "C", Status: model.StatusApproved})

	users, err := s.ListPending(context.Background(), contentAdmin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, first.ID, users[0].ID)
	assert.Equal(t, second.ID, users[1].ID)
	assert.Equal(t, "https://mezun.example.com/uploads/a.pdf", users[0].StudentDocURL)
	assert.Equal(t, "https://cdn.example.com/b.pdf", users[1].StudentDocURL)
}

func TestApproveRemovesFromPending(t *testing.T) {
	s, store, n, pub := newApprovalFixture(t)
	u := store.Add(model.User{Email: "a@example.com"})

	got, changed, err := s.Approve(context.Background(), contentAdmin, u.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.StatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, contentAdmin.ID, *got.DecidedBy)

	assert.NotContains(t, pendingIDs(t, s), u.ID)
	n.AssertNumberOfCalls(t, "UserDecided", 1)
	assert.Equal(t, []events.Type{events.TypeUserApproved}, pub.types())
}

func TestApproveTwiceIsIdempotent(t *testing.T) {
	s, store, n, pub := newApprovalFixture(t)
	u := store.Add(model.User{})

	_, _, err := s.Approve(context.Background(), contentAdmin, u.ID)
	require.NoError(t, err)

	got, changed, err := s.Approve(context.Background(), superAdmin, u.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, contentAdmin.ID, *got.DecidedBy)
	n.AssertNumberOfCalls(t, "UserDecided", 1)
	assert.Len(t, pub.types(), 1)
}

func TestApproveRejectedUserConflicts(t *testing.T) {
	s, store, _, _ := newApprovalFixture(t)
	u := store.Add(model.User{Status: model.StatusRejected, RejectionReason: "eksik belge"})

	_, _, err := s.Approve(context.Background(), contentAdmin, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	current, _ := store.GetByID(context.Background(), u.ID)
	assert.Equal(t, model.StatusRejected, current.Status)
}

func TestApproveUnknownUser(t *testing.T) {
	s, _, _, _ := newApprovalFixture(t)
	_, _, err := s.Approve(context.Background(), contentAdmin, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectPersistsTrimmedReason(t *testing.T) {
	s, store, _, pub := newApprovalFixture(t)
	u := store.Add(model.User{})

	got, changed, err := s.Reject(context.Background(), contentAdmin, u.ID, "  belge okunamıyor ")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, "belge okunamıyor", got.RejectionReason)
	assert.NotContains(t, pendingIDs(t, s), u.ID)
	assert.Equal(t, []events.Type{events.TypeUserRejected}, pub.types())

	// A second rejection keeps the first reason.
	again, changed, err := s.Reject(context.Background(), contentAdmin, u.ID, "başka sebep")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "belge okunamıyor", again.RejectionReason)
}

func TestRejectBlankReason(t *testing.T) {
	s, store, n, _ := newApprovalFixture(t)
	u := store.Add(model.User{})

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, _, err := s.Reject(context.Background(), contentAdmin, u.ID, reason)
		assert.ErrorIs(t, err, ErrReasonRequired)
	}
	current, _ := store.GetByID(context.Background(), u.ID)
	assert.Equal(t, model.StatusPending, current.Status)
	n.AssertNotCalled(t, "UserDecided", mock.Anything, mock.Anything)
}

func TestRejectApprovedUserConflicts(t *testing.T) {
	s, store, _, _ := newApprovalFixture(t)
	u := store.Add(model.User{Status: model.StatusApproved})

	_, _, err := s.Reject(context.Background(), contentAdmin, u.ID, "geç kaldı")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestDecisionsRequirePermission(t *testing.T) {
	s, store, _, pub := newApprovalFixture(t)
	u := store.Add(model.User{})

	_, _, err := s.Approve(context.Background(), noRole, u.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = s.Reject(context.Background(), noRole, u.ID, "x")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.ListPending(context.Background(), noRole)
	assert.ErrorIs(t, err, ErrForbidden)

	current, _ := store.GetByID(context.Background(), u.ID)
	assert.Equal(t, model.StatusPending, current.Status)
	assert.Empty(t, pub.types())
}

func TestNotifierFailureDoesNotFailDecision(t *testing.T) {
	store := testutil.NewStore()
	n := &mockNotifier{}
	n.On("UserDecided", mock.Anything, mock.Anything).Return(assert.AnError)
	s := NewApprovalService(testConfig(t), store, n, events.Nop{}, nopLog)
	u := store.Add(model.User{})

	_, changed, err := s.Approve(context.Background(), contentAdmin, u.ID)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestListApprovedCaseInsensitive(t *testing.T) {
	s, store, _, _ := newApprovalFixture(t)
	a := store.Add(model.User{Name: "A", Status: "Approved"})
	b := store.Add(model.User{Name: "B", Status: "approved"})
	store.Add(model.User{Name: "C", Status: "pending"})
	store.Add(model.User{Name: "D", Status: "REJECTED"})
	store.Add(model.User{Name: "E", Status: model.StatusApproved, AdminRole: model.RoleSuperAdmin, Staff: true})

	profiles, hasMore, err := s.ListApproved(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, profiles, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{profiles[0].ID, profiles[1].ID})
}

func TestListUsersPaginatesWithHasMore(t *testing.T) {
	s, store, _, _ := newApprovalFixture(t)
	for i := 0; i < 5; i++ {
		store.Add(model.User{})
	}

	page1, more, err := s.ListUsers(context.Background(), contentAdmin, nil, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.True(t, more)

	page3, more, err := s.ListUsers(context.Background(), contentAdmin, nil, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.False(t, more)

	_, _, err = s.ListUsers(context.Background(), noRole, nil, 1, 2)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestNormalizePage(t *testing.T) {
	p, l := NormalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPageLimit, l)

	_, l = NormalizePage(2, 1000)
	assert.Equal(t, MaxPageLimit, l)
}
