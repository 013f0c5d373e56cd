package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/export"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/search"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/settings"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/budgetbolt/backend/internal/suggest"
	"github.com/rs/zerolog"
)

var _ api.BudgetServiceHandler = (*BudgetService)(nil)

// Suggester produces the three kinds of model suggestions.
type Suggester interface {
	SuggestBudgetImprovements(ctx context.Context, in suggest.BudgetImprovementsInput) (*suggest.BudgetImprovementsOutput, error)
	SuggestMeaningfulGoals(ctx context.Context, in suggest.MeaningfulGoalsInput) (*suggest.GoalsOutput, error)
	SuggestBudgetGoals(ctx context.Context, in suggest.BudgetGoalsInput) (*suggest.GoalsOutput, error)
}

// Revoker invalidates a user's refresh tokens at the identity provider.
type Revoker interface {
	RevokeSessions(ctx context.Context, uid string) error
}

// TokenCache drops verified tokens of a user.
type TokenCache interface {
	Forget(uid string)
}

type BudgetService struct {
	sessions *session.Manager
	writes   *dispatch.Dispatcher
	feed     *notify.Feed

	push      *notify.PushNotifier
	suggester Suggester
	searcher  search.Searcher
	indexer   search.Indexer
	exporter  *export.Exporter
	revoker   Revoker
	tokens    TokenCache

	now func() time.Time
	log zerolog.Logger
}

func NewBudgetService(sessions *session.Manager, writes *dispatch.Dispatcher, feed *notify.Feed) *BudgetService {
	return &BudgetService{
		sessions: sessions,
		writes:   writes,
		feed:     feed,
		exporter: export.New(nil),
		now:      time.Now,
		log:      logger.Component("service"),
	}
}

// SetPushNotifier enables device token registration.
func (s *BudgetService) SetPushNotifier(p *notify.PushNotifier) {
	s.push = p
}

// SetSuggester enables the suggestion RPCs.
func (s *BudgetService) SetSuggester(sg Suggester) {
	s.suggester = sg
}

// SetSearcher replaces the in-session transaction search.
func (s *BudgetService) SetSearcher(sr search.Searcher) {
	s.searcher = sr
}

// SetIndexer keeps a search index in step with confirmed transaction writes.
func (s *BudgetService) SetIndexer(ix search.Indexer) {
	s.indexer = ix
}

// SetExporter sets the exporter, for example one that archives to a bucket.
func (s *BudgetService) SetExporter(e *export.Exporter) {
	if e != nil {
		s.exporter = e
	}
}

// SetRevoker enables SignOut with AllDevices.
func (s *BudgetService) SetRevoker(r Revoker) {
	s.revoker = r
}

// SetTokenCache lets SignOut drop cached token verifications.
func (s *BudgetService) SetTokenCache(c TokenCache) {
	s.tokens = c
}

// userSession resolves the caller and their live session.
func (s *BudgetService) userSession(ctx context.Context) (*auth.UserClaims, *session.Session, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.sessions.Get(ctx, claims.UID)
	if err != nil {
		return nil, nil, toConnectError(fmt.Errorf("failed to open session: %w", err))
	}
	return claims, sess, nil
}

func (s *BudgetService) userLog(uid string) *zerolog.Logger {
	l := s.log.With().Str("user", logger.HashUserID(uid)).Logger()
	return &l
}

func (s *BudgetService) timestamp() string {
	return model.Timestamp(s.now())
}

// toConnectError maps domain errors onto RPC codes. Connect errors pass through.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, model.ErrInsufficientFunds):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, suggest.ErrSuggestionFailed):
		return connect.NewError(connect.CodeUnavailable, errors.New(suggest.UserMessage))
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, settings.ErrNoUser):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, session.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func notFound(kind, id string) error {
	return connect.NewError(connect.CodeNotFound, fmt.Errorf("%s %q: %w", kind, id, store.ErrNotFound))
}

func requireID(id string) error {
	if id == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id is required"))
	}
	return nil
}
