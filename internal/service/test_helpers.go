package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/budgetbolt/backend/internal/suggest"
)

// testContextWithUser creates a context with authenticated user claims for testing
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
	})
}

// testContextWithProfile creates a context with a display name and photo
func testContextWithProfile(userID, name string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:         userID,
		Email:       userID + "@test.local",
		DisplayName: name,
		Picture:     "https://example.com/" + userID + ".png",
	})
}

type testEnv struct {
	svc      *BudgetService
	store    store.Store
	writes   *dispatch.Dispatcher
	feed     *notify.Feed
	sessions *session.Manager
}

// newTestEnv wires a service over st the way the server does, minus the
// optional integrations.
func newTestEnv(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	feed := notify.NewFeed(16)
	writes := dispatch.New(st, feed, dispatch.WithTimeout(time.Second))
	sessions := session.NewManager(st, writes, session.WithSnapshotWait(time.Second))
	t.Cleanup(sessions.Close)

	return &testEnv{
		svc:      NewBudgetService(sessions, writes, feed),
		store:    st,
		writes:   writes,
		feed:     feed,
		sessions: sessions,
	}
}

// flush waits for every dispatched write to settle.
func (e *testEnv) flush(t *testing.T) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return e.writes.Flush(ctx)
}

// fakeSuggester records the inputs it was called with.
type fakeSuggester struct {
	mu           sync.Mutex
	err          error
	improvements suggest.BudgetImprovementsInput
	meaningful   suggest.MeaningfulGoalsInput
	budgetGoals  suggest.BudgetGoalsInput
}

func (f *fakeSuggester) SuggestBudgetImprovements(ctx context.Context, in suggest.BudgetImprovementsInput) (*suggest.BudgetImprovementsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.improvements = in
	if f.err != nil {
		return nil, f.err
	}
	return &suggest.BudgetImprovementsOutput{Suggestions: []string{"Cook at home twice a week"}}, nil
}

func (f *fakeSuggester) SuggestMeaningfulGoals(ctx context.Context, in suggest.MeaningfulGoalsInput) (*suggest.GoalsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meaningful = in
	if f.err != nil {
		return nil, f.err
	}
	return &suggest.GoalsOutput{SuggestedGoals: []string{"Build a three month emergency fund"}}, nil
}

func (f *fakeSuggester) SuggestBudgetGoals(ctx context.Context, in suggest.BudgetGoalsInput) (*suggest.GoalsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgetGoals = in
	if f.err != nil {
		return nil, f.err
	}
	return &suggest.GoalsOutput{SuggestedGoals: []string{"Keep dining under 1,500 a month"}}, nil
}

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) RevokeSessions(ctx context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return f.err
}

type fakeTokenCache struct {
	forgotten []string
}

func (f *fakeTokenCache) Forget(uid string) {
	f.forgotten = append(f.forgotten, uid)
}
