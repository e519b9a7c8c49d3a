package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const laneBuffer = 64

type UpdateHandler func(context.Context, tgbotapi.Update)

// Client long-polls Telegram and hands updates to a fixed set of worker
// lanes. All updates of one actor land in the same lane, so they are
// handled in arrival order.
type Client struct {
	api         *tgbotapi.BotAPI
	httpClient  *http.Client
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
	workers     int
	dryRun      bool
}

func NewClient(token string, pollTimeout, workers int, logger *zap.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
		workers:     workers,
	}

	if strings.TrimSpace(token) == "" {
		client.dryRun = true
		return client, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	client.api = api
	logger.Info("telegram authorized", zap.String("bot", api.Self.UserName))
	return client, nil
}

func (c *Client) DryRun() bool { return c.dryRun }

func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	lanes := make([]chan tgbotapi.Update, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan tgbotapi.Update, laneBuffer)
		wg.Add(1)
		go func(lane <-chan tgbotapi.Update) {
			defer wg.Done()
			for update := range lane {
				c.handler(ctx, update)
			}
		}(lanes[i])
	}

	defer func() {
		for _, lane := range lanes {
			close(lane)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			lane := lanes[LaneFor(ActorID(update), c.workers)]
			select {
			case lane <- update:
			case <-ctx.Done():
				c.api.StopReceivingUpdates()
				return nil
			}
		}
	}
}

// ActorID is the user an update comes from, or 0 when it has none.
func ActorID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.EditedMessage != nil && update.EditedMessage.From != nil:
		return update.EditedMessage.From.ID
	default:
		return 0
	}
}

func LaneFor(actorID int64, workers int) int {
	if workers <= 1 {
		return 0
	}
	lane := actorID % int64(workers)
	if lane < 0 {
		lane = -lane
	}
	return int(lane)
}

func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if c.dryRun {
		c.logger.Debug("dry run send")
		return tgbotapi.Message{}, nil
	}
	return c.api.Send(msg)
}

// Request is for calls that return no message, such as callback answers.
func (c *Client) Request(req tgbotapi.Chattable) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Request(req)
	return err
}

// DownloadFile streams a file the bot received. The caller closes the body.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, int64, error) {
	if c.dryRun {
		return nil, 0, errors.New("telegram client is in dry mode")
	}

	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build file request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}
