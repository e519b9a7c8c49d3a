package app

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/callback"
	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/metrics"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/moderation"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/session"
	statssvc "github.com/nestor-churin/AlcoMeterBot/internal/services/stats"
	"github.com/nestor-churin/AlcoMeterBot/internal/services/suggestion"
	"github.com/nestor-churin/AlcoMeterBot/internal/ui"
)

const (
	queueLimit   = 50
	auditLimit   = 20
	topUsageText = "❌ Використання: /top [кількість від 1 до 50]"
)

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			metrics.Get().HandlerPanicTotal.Inc()
			a.logger.Error("update handler panic", zap.Any("panic", r), zap.Int("update_id", update.UpdateID), zap.Stack("stack"))
		}
	}()

	switch {
	case update.Message != nil:
		metrics.Get().UpdatesTotal.WithLabelValues("message").Inc()
		a.routeMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		metrics.Get().UpdatesTotal.WithLabelValues("callback").Inc()
		a.handleCallback(ctx, update.CallbackQuery)
	default:
		metrics.Get().UpdatesTotal.WithLabelValues("other").Inc()
	}
}

func (a *App) routeMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	if message.IsCommand() {
		a.routeCommand(ctx, message)
		return
	}

	switch {
	case message.VideoNote != nil:
		a.handleVideoNote(ctx, message)
	case message.Video != nil, len(message.Photo) > 0, message.Document != nil, message.Animation != nil:
		a.handleOtherMedia(ctx, message)
	case strings.TrimSpace(message.Text) != "":
		a.handleText(ctx, message)
	default:
		a.sendText(message.Chat.ID, ui.UnknownText)
	}
}

func (a *App) routeCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	switch message.Command() {
	case "start":
		a.sendMainMenu(ctx, chatID, userID)
	case "help":
		a.sendText(chatID, ui.HelpText)
	case "tos":
		a.sendText(chatID, ui.TOSText)
	case "types":
		a.sendText(chatID, a.renderer.Types())
	case "add":
		a.handleAdd(ctx, message)
	case "cancel":
		a.handleCancel(ctx, message)
	case "stats":
		a.handleStats(ctx, message)
	case "history":
		a.handleHistory(ctx, message)
	case "top":
		a.handleTop(ctx, message)
	case "suggest":
		a.handleSuggest(ctx, message)
	case "requests":
		a.handleRequests(ctx, message)
	case "audit":
		a.handleAudit(ctx, message)
	default:
		a.sendText(chatID, ui.UnknownText)
	}
}

func (a *App) sendMainMenu(ctx context.Context, chatID, userID int64) {
	text, menu := ui.RenderStart(a.accessService.ResolveRole(ctx, userID))
	response := tgbotapi.NewMessage(chatID, text)
	response.ReplyMarkup = ui.MainMenu(menu)
	if _, err := a.sender.Send(response); err != nil {
		a.logger.Error("send main menu", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (a *App) handleAdd(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	_, err := a.sessionService.Begin(ctx, message.From.ID, displayName(message.From))
	var suspended *errs.SuspendedError
	switch {
	case err == nil:
		a.sendText(chatID, ui.AskEvidenceText)
	case errors.As(err, &suspended):
		a.sendText(chatID, a.renderer.SuspendedText(suspended.Until))
	case errors.Is(err, errs.ErrSessionConflict):
		a.sendText(chatID, ui.SessionConflictText)
	default:
		a.logger.Error("begin session", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(chatID, ui.InternalErrorText)
	}
}

func (a *App) handleCancel(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	sessionCancelled, err := a.sessionService.Cancel(ctx, userID)
	if err != nil {
		a.logger.Warn("cancel session", zap.Error(err), zap.Int64("user_id", userID))
	}
	suggestionCancelled, err := a.suggestionService.Cancel(ctx, userID)
	if err != nil {
		a.logger.Warn("cancel suggestion", zap.Error(err), zap.Int64("user_id", userID))
	}

	if sessionCancelled || suggestionCancelled {
		a.sendText(message.Chat.ID, ui.CancelledText)
		return
	}
	a.sendText(message.Chat.ID, ui.NothingToCancelText)
}

func (a *App) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := a.statsService.Personal(ctx, message.From.ID)
	if err != nil {
		a.logger.Error("load personal stats", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(message.Chat.ID, ui.InternalErrorText)
		return
	}
	a.sendText(message.Chat.ID, a.renderer.Stats(stats))
}

func (a *App) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	records, err := a.statsService.History(ctx, message.From.ID)
	if err != nil {
		a.logger.Error("load history", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(message.Chat.ID, ui.InternalErrorText)
		return
	}
	a.sendText(message.Chat.ID, a.renderer.History(records))
}

func (a *App) handleTop(ctx context.Context, message *tgbotapi.Message) {
	limit, err := statssvc.ParseTopLimit(message.CommandArguments())
	if err != nil {
		a.sendText(message.Chat.ID, topUsageText)
		return
	}
	entries, err := a.statsService.Top(ctx, limit)
	if err != nil {
		a.logger.Error("load leaderboard", zap.Error(err))
		a.sendText(message.Chat.ID, ui.InternalErrorText)
		return
	}
	a.sendText(message.Chat.ID, ui.Leaderboard(entries))
}

func (a *App) handleSuggest(ctx context.Context, message *tgbotapi.Message) {
	if _, err := a.suggestionService.Begin(ctx, message.From.ID, displayName(message.From)); err != nil {
		a.logger.Error("begin suggestion", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(message.Chat.ID, ui.InternalErrorText)
		return
	}
	a.sendText(message.Chat.ID, ui.AskSuggestionNameText)
}

func (a *App) handleRequests(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	adminID := message.From.ID
	if err := a.accessService.RequireAdmin(adminID); err != nil {
		a.sendText(chatID, ui.AdminOnlyText)
		return
	}

	queue, err := a.moderationService.PendingQueue(ctx, queueLimit)
	if err != nil {
		a.logger.Error("load pending queue", zap.Error(err))
		a.sendText(chatID, ui.InternalErrorText)
		return
	}

	paused := a.moderationService.Pauses().IsPaused(adminID)
	if len(queue) == 0 {
		a.sendInlineMarkup(chatID, ui.QueueEmptyText, ui.PauseKeyboard(paused))
		return
	}

	for _, rec := range queue {
		text := a.renderer.QueueCard(rec) + a.evidenceLink(ctx, rec)
		if err := a.notifyService.SendSubmissionCard(chatID, rec, text); err != nil {
			a.logger.Warn("send queue card", zap.Error(err), zap.Int64("submission_id", rec.ID))
		}
	}
	a.sendInlineMarkup(chatID, ui.QueueSummary(len(queue)), ui.PauseKeyboard(paused))
}

func (a *App) evidenceLink(ctx context.Context, rec model.Submission) string {
	if a.evidenceService == nil || rec.EvidenceKey == "" {
		return ""
	}
	link, err := a.evidenceService.Link(ctx, rec.EvidenceKey)
	if err != nil {
		a.logger.Warn("presign evidence", zap.Error(err), zap.Int64("submission_id", rec.ID))
		return ""
	}
	return "\n🔗 " + link
}

func (a *App) handleAudit(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if err := a.accessService.RequireAdmin(message.From.ID); err != nil {
		a.sendText(chatID, ui.AdminOnlyText)
		return
	}

	entries, err := a.auditService.ListRecent(ctx, auditLimit)
	if err != nil {
		a.logger.Error("list audit", zap.Error(err))
		a.sendText(chatID, ui.InternalErrorText)
		return
	}
	for _, chunk := range ui.Audit(entries) {
		a.sendText(chatID, chunk)
	}
}

func (a *App) handleVideoNote(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	_, err := a.sessionService.AttachEvidence(ctx, message.From.ID, message.VideoNote.FileID)
	switch {
	case err == nil:
		a.sendInlineMarkup(chatID, ui.ChooseCategoryText, ui.CategoryKeyboard(a.cfg.AlcoholTypes))
	case errors.Is(err, errs.ErrNoSession), errors.Is(err, errs.ErrWrongStep):
		a.sendText(chatID, ui.NoSessionText)
	default:
		a.logger.Error("attach evidence", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(chatID, ui.InternalErrorText)
	}
}

func (a *App) handleOtherMedia(ctx context.Context, message *tgbotapi.Message) {
	refused, err := a.sessionService.RejectMedia(ctx, message.From.ID)
	if err != nil {
		a.logger.Warn("check media step", zap.Error(err), zap.Int64("user_id", message.From.ID))
	}
	if refused {
		a.sendText(message.Chat.ID, ui.OnlyVideoNotesText)
		return
	}
	a.sendText(message.Chat.ID, ui.UnknownText)
}

// handleText feeds free text to whichever flow is waiting for it. A typed
// volume wins over an open suggestion.
func (a *App) handleText(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	awaiting, err := a.sessionService.AwaitingVolume(ctx, userID)
	if err != nil {
		a.logger.Warn("check session step", zap.Error(err), zap.Int64("user_id", userID))
	}
	if awaiting {
		a.handleTypedVolume(ctx, message)
		return
	}

	active, err := a.suggestionService.Active(ctx, userID)
	if err != nil {
		a.logger.Warn("check suggestion", zap.Error(err), zap.Int64("user_id", userID))
	}
	if active {
		a.handleSuggestionAnswer(ctx, message)
		return
	}

	a.sendText(message.Chat.ID, ui.UnknownText)
}

func (a *App) handleTypedVolume(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	result, err := a.sessionService.SubmitVolume(ctx, message.From.ID, message.Text)
	switch {
	case err == nil:
		a.completeSubmission(chatID, result)
	case errors.Is(err, errs.ErrInvalidInput):
		a.sendText(chatID, ui.InvalidVolumeText)
	case errors.Is(err, errs.ErrNoSession):
		a.sendText(chatID, ui.SessionExpiredText)
	default:
		a.logger.Error("submit volume", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(chatID, ui.InternalErrorText)
	}
}

func (a *App) handleSuggestionAnswer(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	outcome, err := a.suggestionService.Submit(ctx, message.From.ID, message.Text)
	switch {
	case err == nil && outcome.Done():
		a.sendText(chatID, ui.SuggestionThanksText)
	case err == nil:
		a.sendText(chatID, suggestionPrompt(outcome.Next))
	case errors.Is(err, errs.ErrInvalidInput):
		a.sendText(chatID, suggestionRetryText(outcome.Next))
	case errors.Is(err, errs.ErrNoSession):
		a.sendText(chatID, ui.UnknownText)
	default:
		a.logger.Error("submit suggestion", zap.Error(err), zap.Int64("user_id", message.From.ID))
		a.sendText(chatID, ui.InternalErrorText)
	}
}

func suggestionPrompt(step suggestion.Step) string {
	switch step {
	case suggestion.StepStrength:
		return ui.AskSuggestionStrengthText
	case suggestion.StepSubtypes:
		return ui.AskSuggestionSubtypesText
	default:
		return ui.AskSuggestionNameText
	}
}

func suggestionRetryText(step suggestion.Step) string {
	switch step {
	case suggestion.StepStrength:
		return ui.InvalidStrengthText
	case suggestion.StepSubtypes:
		return ui.InvalidSubtypesText
	default:
		return ui.InvalidSuggestionNameText
	}
}

func (a *App) completeSubmission(chatID int64, result session.FinalizeResult) {
	a.sendText(chatID, a.renderer.SubmissionSaved(result.Submission))
	a.afterFinalize(result)
}

// callbackAck is the toast shown to the user who pressed a button.
type callbackAck struct {
	text  string
	alert bool
}

func (a *App) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query == nil || query.From == nil {
		return
	}

	var ack callbackAck
	defer func() {
		a.answerCallback(query.ID, ack)
	}()

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	payload, err := callback.Decode(query.Data)
	if err != nil {
		a.logger.Debug("malformed callback", zap.Error(err), zap.String("data", query.Data))
		ack = callbackAck{text: ui.WrongStepText, alert: true}
		return
	}

	switch payload.Kind {
	case callback.KindCategory, callback.KindSubtype, callback.KindVolume:
		ack = a.handleSessionCallback(ctx, query, payload)
	case callback.KindSubmission:
		ack = a.handleSubmissionDecision(ctx, query, payload)
	case callback.KindSuggestion:
		ack = a.handleSuggestionDecision(ctx, query, payload)
	case callback.KindPause:
		ack = a.handlePauseToggle(ctx, query)
	}
}

func (a *App) handleSessionCallback(ctx context.Context, query *tgbotapi.CallbackQuery, payload callback.Payload) callbackAck {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	var err error
	switch payload.Kind {
	case callback.KindCategory:
		var cat catalog.Category
		_, cat, err = a.sessionService.ChooseCategory(ctx, userID, payload.Category)
		if err == nil {
			a.editMessage(chatID, messageID, a.renderer.SubtypePrompt(cat), markupPtr(ui.SubtypeKeyboard(cat)))
		}
	case callback.KindSubtype:
		var cat catalog.Category
		_, cat, err = a.sessionService.ChooseSubtype(ctx, userID, payload.Category, payload.Subtype)
		if err == nil {
			a.editMessage(chatID, messageID, ui.ChooseVolumeText, markupPtr(ui.VolumeKeyboard(cat)))
		}
	case callback.KindVolume:
		var result *session.FinalizeResult
		result, _, err = a.sessionService.ChooseVolume(ctx, userID, session.VolumeChoice{
			Custom:   payload.Custom,
			VolumeML: payload.Volume,
		})
		if err == nil {
			if result == nil {
				a.editMessage(chatID, messageID, ui.AskCustomVolumeText, nil)
			} else {
				a.editMessage(chatID, messageID, a.renderer.SubmissionSaved(result.Submission), nil)
				a.afterFinalize(*result)
			}
		}
	}

	switch {
	case err == nil:
		return callbackAck{}
	case errors.Is(err, errs.ErrNoSession):
		return callbackAck{text: ui.SessionExpiredText, alert: true}
	case errors.Is(err, errs.ErrWrongStep), errors.Is(err, errs.ErrInvalidInput):
		return callbackAck{text: ui.WrongStepText, alert: true}
	default:
		a.logger.Error("session callback", zap.Error(err), zap.Int64("user_id", userID), zap.String("data", query.Data))
		return callbackAck{text: ui.InternalErrorText, alert: true}
	}
}

func (a *App) afterFinalize(result session.FinalizeResult) {
	if delivered := model.CountDelivered(result.Deliveries); delivered < len(result.Deliveries) {
		a.logger.Info("submission reached part of the admins",
			zap.Int64("submission_id", result.Submission.ID),
			zap.Int("delivered", delivered),
			zap.Int("recipients", len(result.Deliveries)),
		)
	}
	a.archiveAsync(result.Submission)
}

func (a *App) handleSubmissionDecision(ctx context.Context, query *tgbotapi.CallbackQuery, payload callback.Payload) callbackAck {
	actorID := query.From.ID
	if err := a.accessService.RequireAdmin(actorID); err != nil {
		return callbackAck{text: ui.AdminOnlyActionText, alert: true}
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	input := moderation.DecisionInput{
		ActorID:  actorID,
		UserID:   payload.UserID,
		VolumeML: payload.Volume,
	}

	if payload.Approve {
		if _, err := a.moderationService.Approve(ctx, input); err != nil {
			return a.decisionErrorAck("approve submission", err)
		}
		a.editMessage(chatID, messageID, query.Message.Text+ui.ApprovedSuffix, nil)
		a.notifyTarget(ctx, payload.UserID, ui.UserApprovedText)
		return callbackAck{}
	}

	result, err := a.moderationService.Reject(ctx, input)
	if err != nil {
		return a.decisionErrorAck("reject submission", err)
	}
	a.editMessage(chatID, messageID, query.Message.Text+a.renderer.RejectedSuffix(result.RejectedCount, result.Suspension), nil)
	a.notifyTarget(ctx, payload.UserID, a.renderer.UserRejectedNotice(result.Suspension))
	return callbackAck{}
}

func (a *App) handleSuggestionDecision(ctx context.Context, query *tgbotapi.CallbackQuery, payload callback.Payload) callbackAck {
	actorID := query.From.ID
	if err := a.accessService.RequireAdmin(actorID); err != nil {
		return callbackAck{text: ui.AdminOnlyActionText, alert: true}
	}

	sg, err := a.suggestionService.Decide(ctx, actorID, payload.ID, payload.Approve)
	if err != nil {
		return a.decisionErrorAck("decide suggestion", err)
	}
	a.editMessage(query.Message.Chat.ID, query.Message.MessageID, query.Message.Text+ui.SuggestionDecisionSuffix(sg), nil)
	a.notifyTarget(ctx, sg.UserID, ui.SuggestionResultNotice(sg))
	return callbackAck{}
}

func (a *App) handlePauseToggle(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAck {
	actorID := query.From.ID
	if err := a.accessService.RequireAdmin(actorID); err != nil {
		return callbackAck{text: ui.AdminOnlyActionText, alert: true}
	}

	paused := a.moderationService.TogglePause(ctx, actorID)
	a.editMessage(
		query.Message.Chat.ID,
		query.Message.MessageID,
		pauseBase(query.Message.Text)+ui.PauseSuffix(paused),
		markupPtr(ui.PauseKeyboard(paused)),
	)
	return callbackAck{}
}

func (a *App) decisionErrorAck(op string, err error) callbackAck {
	if errors.Is(err, errs.ErrStaleReference) {
		return callbackAck{text: ui.AlreadyResolvedText, alert: true}
	}
	if errors.Is(err, errs.ErrInvalidInput) {
		return callbackAck{text: ui.WrongStepText, alert: true}
	}
	a.logger.Error(op, zap.Error(err))
	return callbackAck{text: ui.InternalErrorText, alert: true}
}

// notifyTarget tells the author about a decision. A blocked bot or a
// deleted account must not undo the decision, so failures are only logged.
func (a *App) notifyTarget(ctx context.Context, userID int64, text string) {
	if err := a.notifyService.NotifyUser(ctx, userID, text); err != nil {
		a.logger.Info("decision notice not delivered", zap.Error(err), zap.Int64("user_id", userID))
	}
}

func (a *App) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.Chattable
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if _, err := a.sender.Send(edit); err != nil {
		a.logger.Warn("edit message", zap.Error(err), zap.Int64("chat_id", chatID), zap.Int("message_id", messageID))
	}
}

func (a *App) sendInlineMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := a.sender.Send(msg); err != nil {
		a.logger.Error("send inline message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (a *App) answerCallback(callbackID string, ack callbackAck) {
	cfg := tgbotapi.NewCallback(callbackID, ack.text)
	cfg.ShowAlert = ack.alert
	if err := a.sender.Request(cfg); err != nil {
		a.logger.Warn("answer callback", zap.Error(err))
	}
}

func (a *App) sendText(chatID int64, text string) {
	if _, err := a.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.logger.Error("send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// pauseBase drops the suffix a previous toggle left on the message.
func pauseBase(text string) string {
	text = strings.TrimSuffix(text, ui.PausedSuffix)
	return strings.TrimSuffix(text, ui.ResumedSuffix)
}

func markupPtr(markup tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &markup
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if name := strings.TrimSpace(user.UserName); name != "" {
		return name
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
