package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	"connectrpc.com/connect"
	"github.com/budgetbolt/backend/internal/api"
	"github.com/budgetbolt/backend/internal/auth"
	"github.com/budgetbolt/backend/internal/config"
	"github.com/budgetbolt/backend/internal/dispatch"
	"github.com/budgetbolt/backend/internal/export"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/notify"
	"github.com/budgetbolt/backend/internal/search"
	"github.com/budgetbolt/backend/internal/service"
	"github.com/budgetbolt/backend/internal/session"
	"github.com/budgetbolt/backend/internal/store"
	"github.com/budgetbolt/backend/internal/suggest"
	"github.com/budgetbolt/backend/internal/telemetry"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetJSON()
	}
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth

	if cfg.UseMemoryStore {
		// Local development always runs with mock authentication
		log.Info().Msg("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Firestore client")
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)

		if cfg.SkipAuth {
			log.Warn().Msg("SKIP_AUTH enabled - using mock authentication with Firestore (for seeding/testing only)")
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx, cfg.ProjectID)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize Firebase Auth")
			}
		}
	}

	feed := notify.NewFeed(notify.DefaultFeedSize)
	notifiers := notify.Fanout{feed, notify.LogNotifier{}}

	var push *notify.PushNotifier
	if cfg.EnablePush && firebaseAuth != nil {
		fcm, err := firebaseAuth.Messaging(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase Messaging")
		}
		push = notify.NewPushNotifier(storeImpl, fcm, os.Getenv("PUSH_LINK"))
		notifiers = append(notifiers, push)
		log.Info().Msg("Push notifications enabled")
	}

	writes := dispatch.New(storeImpl, notifiers, dispatch.WithTimeout(cfg.WriteTimeout))
	sessions := session.NewManager(storeImpl, writes,
		session.WithIdleTTL(cfg.SessionIdleTTL),
		session.WithSnapshotWait(cfg.SnapshotWait),
		session.WithOnEnd(feed.Forget),
	)
	go sessions.Run(ctx)

	budgetService := service.NewBudgetService(sessions, writes, feed)
	if push != nil {
		budgetService.SetPushNotifier(push)
	}

	if cfg.SuggestionsEnabled() {
		suggester, err := suggest.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create suggestion client")
		}
		budgetService.SetSuggester(suggester)
		log.Info().Str("model", cfg.GeminiModel).Msg("Suggestions enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - suggestions disabled")
	}

	if cfg.SearchEnabled() {
		searcher, err := search.NewAlgoliaClient(search.Config{
			AppID:     cfg.AlgoliaAppID,
			APIKey:    cfg.AlgoliaSearchKey,
			IndexName: cfg.AlgoliaIndex,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Algolia client")
		}
		budgetService.SetSearcher(searcher)
		log.Info().Str("index", cfg.AlgoliaIndex).Msg("Algolia search enabled")
	}
	if cfg.IndexingEnabled() {
		indexer, err := search.NewAlgoliaIndexer(search.Config{
			AppID:     cfg.AlgoliaAppID,
			APIKey:    cfg.AlgoliaAdminKey,
			IndexName: cfg.AlgoliaIndex,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Algolia indexer")
		}
		budgetService.SetIndexer(indexer)
	}

	if cfg.ExportBucket != "" {
		storageClient, err := gcsstorage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Cloud Storage client")
		}
		defer storageClient.Close()
		budgetService.SetExporter(export.New(export.NewBucketUploader(storageClient.Bucket(cfg.ExportBucket))))
		log.Info().Str("bucket", cfg.ExportBucket).Msg("CSV exports are archived")
	}

	var interceptors []connect.Interceptor

	// Debug interceptor first so impersonation headers win in dev mode
	interceptors = append(interceptors, auth.NewDebugInterceptor(cfg.SkipAuth))

	if firebaseAuth != nil {
		verifier := auth.NewCachingVerifier(firebaseAuth, auth.DefaultCacheTTL)
		go sweepTokens(ctx, verifier)
		budgetService.SetRevoker(firebaseAuth)
		budgetService.SetTokenCache(verifier)
		interceptors = append(interceptors, auth.NewAuthInterceptor(verifier))
	} else {
		interceptors = append(interceptors, auth.NewLocalDevInterceptor())
	}

	path, handler := api.NewBudgetServiceHandler(
		budgetService,
		connect.WithInterceptors(interceptors...),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"Grpc-Timeout",
			"User-Agent",
			"X-Grpc-Web",
			"X-User-Agent",
			"X-Debug-User-ID",
			"X-Debug-User-Email",
			"X-Debug-User-Name",
			"X-Debug-Impersonate-User",
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
			"Grpc-Status-Details-Bin",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(telemetry.Handler(c.Handler(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := writes.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Pending writes did not settle")
	}
	sessions.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown failed")
	}
}

// sweepTokens drops expired verifications so the cache stays bounded.
func sweepTokens(ctx context.Context, verifier *auth.CachingVerifier) {
	ticker := time.NewTicker(auth.DefaultCacheTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			verifier.Sweep()
		}
	}
}
