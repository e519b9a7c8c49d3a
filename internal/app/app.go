package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nestor-churin/AlcoMeterBot/internal/config"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/httpserver"
	s3infra "github.com/nestor-churin/AlcoMeterBot/internal/infra/s3"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/telegram"
	"github.com/nestor-churin/AlcoMeterBot/internal/jobs/sweeper"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/ledger"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/statestore"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/access"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/audit"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/evidence"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/moderation"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/notify"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/session"
	statssvc "github.com/nestor-churin/AlcoMeterBot/internal/services/stats"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/suggestion"
	"github.com/nestor-churin/AlcoMeterBot/internal/ui"
)

const (
	sessionKeyPrefix    = "alco:session:"
	suggestionKeyPrefix = "alco:suggest:"
	archiveTimeout      = 2 * time.Minute
)

// Sender is the slice of the Telegram client the handlers talk to.
type Sender interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) error
}

type App struct {
	cfg    config.Config
	logger *zap.Logger
	ledger *ledger.Store
	redis  *goredis.Client
	tg     *telegram.Client
	sender Sender

	httpServer *httpserver.Server
	sweeper    *sweeper.Job

	renderer          *ui.Renderer
	accessService     *access.Service
	auditService      *audit.Service
	moderationService *moderation.Service
	notifyService     *notify.Service
	sessionService    *session.Service
	suggestionService *suggestion.Service
	statsService      *statssvc.Service
	evidenceService   *evidence.Service

	background sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := ledger.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	app := &App{
		cfg:     cfg,
		logger:  logger,
		ledger:  store,
		sweeper: sweeper.New(cfg.Bot.SweepInterval, logger),
	}

	app.tg, err = telegram.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeoutSeconds, cfg.Bot.Workers, logger, app.routeUpdate)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	if app.tg.DryRun() {
		logger.Warn("bot token is empty, running without telegram")
	}

	sessions, suggestions, err := app.openStateStores(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	app.assemble(app.tg, sessions, suggestions)

	if cfg.ArchiveEnabled() {
		archive, err := s3infra.NewArchive(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.UseSSL)
		if err != nil {
			logger.Warn("evidence archive unavailable", zap.Error(err))
		} else {
			app.evidenceService = evidence.NewService(app.tg, archive, ledger.NewSubmissionsRepo(store), logger)
		}
	} else {
		logger.Info("evidence archive is disabled: missing s3 endpoint or bucket")
	}

	if strings.TrimSpace(cfg.HTTP.Addr) != "" {
		app.httpServer = httpserver.New(cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, store, logger)
	}

	return app, nil
}

func (a *App) openStateStores(ctx context.Context) (session.Store, suggestion.Store, error) {
	ttl := a.cfg.Bot.SessionTTL

	if strings.TrimSpace(a.cfg.Redis.Addr) != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		a.redis = client
		a.logger.Info("conversation state in redis", zap.String("addr", a.cfg.Redis.Addr))
		return statestore.NewRedis[session.Draft](client, sessionKeyPrefix, ttl),
			statestore.NewRedis[suggestion.Draft](client, suggestionKeyPrefix, ttl),
			nil
	}

	sessions := statestore.NewMemory[session.Draft](ttl, time.Now)
	suggestions := statestore.NewMemory[suggestion.Draft](ttl, time.Now)
	a.sweeper.Attach("sessions", sessions)
	a.sweeper.Attach("suggestions", suggestions)
	return sessions, suggestions, nil
}

// assemble builds the services on top of an open ledger.
func (a *App) assemble(sender Sender, sessions session.Store, suggestions suggestion.Store) {
	submissions := ledger.NewSubmissionsRepo(a.ledger)
	location := a.cfg.Location()

	a.sender = sender
	a.renderer = ui.NewRenderer(a.cfg.AlcoholTypes, location)
	a.accessService = access.NewService(a.cfg.Bot.AdminIDs)
	a.auditService = audit.NewService(ledger.NewAuditRepo(a.ledger))
	a.moderationService = moderation.NewService(submissions, ledger.NewSuspensionsRepo(a.ledger), a.auditService, a.logger)
	a.notifyService = notify.NewService(
		sender,
		a.accessService.Admins(),
		a.moderationService.Pauses(),
		a.renderer,
		notifyLimiter(a.cfg.Bot),
		a.logger,
	)
	a.sessionService = session.NewService(sessions, a.cfg.AlcoholTypes, a.moderationService, submissions, a.notifyService, a.logger)
	a.suggestionService = suggestion.NewService(suggestions, ledger.NewSuggestionsRepo(a.ledger), a.notifyService, a.auditService, a.logger)
	a.statsService = statssvc.NewService(submissions, location)
}

func notifyLimiter(cfg config.BotConfig) *rate.Limiter {
	if cfg.NotifyRate <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.NotifyBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.NotifyRate), burst)
}

// Run blocks until ctx is done or one of the loops fails.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := run(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			errOnce.Do(func() {
				firstErr = fmt.Errorf("%s: %w", name, err)
			})
			cancel()
		}()
	}

	start("sweeper", a.sweeper.Run)
	if a.httpServer != nil {
		start("http", a.httpServer.Run)
	}
	start("telegram", a.tg.Start)

	wg.Wait()
	return firstErr
}

// archiveAsync copies the evidence of a fresh submission in the background.
// Failures are logged and counted by the evidence service.
func (a *App) archiveAsync(rec model.Submission) {
	if a.evidenceService == nil {
		return
	}
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		_, _ = a.evidenceService.Archive(ctx, rec)
	}()
}

func (a *App) close() {
	a.background.Wait()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("close redis", zap.Error(err))
		}
	}
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			a.logger.Error("close ledger", zap.Error(err))
		}
	}
}
