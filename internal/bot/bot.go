package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"skillup-tracker/internal/model"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTopic
	stageDescription
	stageCategory
	stageStatus
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
)

type conversationState struct {
	stage conversationStage
	input service.ActivityInput
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	activityID uint
	action     confirmationAction
}

// sender is the part of the Telegram client the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram front-end over the activity log.
type Bot struct {
	api           sender
	client        *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	activitySvc   *service.ActivityService
	categorySvc   *service.CategoryService
	reminderSvc   *service.ReminderService
	log           *zap.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, activitySvc *service.ActivityService, categorySvc *service.CategoryService, reminderSvc *service.ReminderService, log *zap.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(client, userRepo, activitySvc, categorySvc, reminderSvc, log)
	b.client = client
	b.log.Info("bot authorized", zap.String("account", client.Self.UserName))
	return b, nil
}

func newBot(api sender, userRepo *repository.UserRepository, activitySvc *service.ActivityService, categorySvc *service.CategoryService, reminderSvc *service.ReminderService, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:           api,
		userRepo:      userRepo,
		activitySvc:   activitySvc,
		categorySvc:   categorySvc,
		reminderSvc:   reminderSvc,
		log:           log.Named("bot"),
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot client is not configured")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", zap.Error(err))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled. Send /log whenever you want to start again.")
	}

	if msg.IsCommand() {
		b.log.Debug("command", zap.Int64("from", msg.From.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /log to record what you learned or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "log":
		return b.startLogConversation(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of what you learn every day.</b>\n\n%s", escape(name), commandList)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Commands</b>\n"+commandList)
}

const commandList = "• /log: record a learning activity step by step\n" +
	"• /today: today's activities with quick buttons\n" +
	"• /stats: totals, completion rate and streak\n" +
	"• /done &lt;id&gt;: mark an activity completed (e.g. /done 3)\n" +
	"• /delete &lt;id&gt;: delete an activity\n" +
	"• /categories: available categories\n" +
	"• /cancel: abort the current input"

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user)
	if err != nil {
		b.log.Error("build stats", zap.Uint("user_id", user.ID), zap.Error(err))
		return b.sendText(msg.Chat.ID, "Could not load your statistics right now. Please try again later.")
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTodayList(ctx, msg.Chat.ID, user)
}

func (b *Bot) startLogConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTopic})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New learning activity.\n<b>Step 1:</b> what topic did you study?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTopic:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The topic cannot be empty. What did you study?", cancelKeyboard())
		}
		if len([]rune(text)) > 200 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Keep the topic under 200 characters, please.", cancelKeyboard())
		}
		state.input.Topic = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a short description (or press Skip).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageCategory
		categories, err := b.categorySvc.List(ctx)
		if err != nil {
			return err
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category (or press Skip).", categoryKeyboard(categories))
	case stageCategory:
		if !isSkipInput(text) {
			category, err := b.categorySvc.FindByName(ctx, stripCategoryIcon(text))
			if err != nil {
				return err
			}
			if category == nil {
				categories, err := b.categorySvc.List(ctx)
				if err != nil {
					return err
				}
				return b.sendWithReplyMarkup(msg.Chat.ID, "I do not know that category. Pick one from the keyboard or press Skip.", categoryKeyboard(categories))
			}
			state.input.CategoryID = &category.ID
		}
		state.stage = stageStatus
		return b.sendWithReplyMarkup(msg.Chat.ID, "📌 Is it done already?", statusKeyboard())
	case stageStatus:
		status, ok := parseStatusInput(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Press Completed or Pending.", statusKeyboard())
		}
		state.input.Status = status
		err := b.finishActivityCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "The dialog was reset. Try again with /log.")
	}
}

func (b *Bot) finishActivityCreation(ctx context.Context, from *tgbotapi.User, input service.ActivityInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Create(ctx, user.ID, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the activity: %s", escape(err.Error())))
	}

	b.log.Info("activity logged", zap.Uint("activity_id", activity.ID), zap.Uint("user_id", user.ID), zap.String("status", string(activity.Status)))

	var summary strings.Builder
	summary.WriteString("✅ <b>Activity saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", activity.ID))
	summary.WriteString(fmt.Sprintf("• <b>Topic:</b> %s\n", escape(activity.Topic)))
	if activity.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(activity.Description)))
	}
	if activity.Category != nil {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", categoryLabel(activity.Category.Name)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Date:</b> %s\n", activity.Date))
	summary.WriteString(fmt.Sprintf("• <b>Status:</b> %s", activity.Status))

	if err := b.sendWithReplyMarkup(chatID, summary.String(), mainMenuKeyboard()); err != nil {
		return err
	}
	return b.sendTodayList(ctx, chatID, user)
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	activityID, ok := parseIDArgument(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Give the activity ID: /done 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Complete(ctx, user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(msg.Chat.ID, "Activity not found.")
		}
		return err
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ “%s” is completed.", escape(activity.Topic)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	activityID, ok := parseIDArgument(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Give the activity ID: /delete 12")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, activityID)
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	categories, err := b.categorySvc.List(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s <code>%s</code>\n", categoryLabel(cat.Name), escape(cat.Color)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDelete {
			return b.deleteActivityAndRefresh(ctx, msg.Chat.ID, msg.From, req.activityID)
		}
		return b.completeActivityAndRefresh(ctx, msg.Chat.ID, msg.From, req.activityID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔹 Nothing changed.")
	default:
		prompt := "Confirm or cancel completing the activity."
		if req.action == actionDelete {
			prompt = "Confirm or cancel deleting the activity."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		activityID, err := parseCallbackID(data, cbCompletePrefix)
		if err != nil {
			return nil
		}
		return b.askCompleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, activityID)
	case strings.HasPrefix(data, cbDeletePrefix):
		activityID, err := parseCallbackID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, activityID)
	default:
		return nil
	}
}

func (b *Bot) askCompleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, activityID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Get(ctx, user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(chatID, "Activity not found.")
		}
		return err
	}
	if activity.IsCompleted() {
		return b.sendText(chatID, "That activity is already completed.")
	}

	b.setConfirmation(from.ID, confirmationRequest{activityID: activity.ID, action: actionComplete})
	text := fmt.Sprintf("Mark “%s” (#%d) as completed?", escape(activity.Topic), activity.ID)
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, activityID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Get(ctx, user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(chatID, "Activity not found.")
		}
		return err
	}

	b.setConfirmation(from.ID, confirmationRequest{activityID: activity.ID, action: actionDelete})
	text := fmt.Sprintf("Delete “%s” (#%d)?", escape(activity.Topic), activity.ID)
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) completeActivityAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, activityID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Complete(ctx, user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(chatID, "Activity not found or already deleted.")
		}
		return err
	}

	b.log.Info("activity completed", zap.Uint("activity_id", activity.ID), zap.Uint("user_id", user.ID))
	if err := b.sendText(chatID, fmt.Sprintf("✅ “%s” is completed.", escape(activity.Topic))); err != nil {
		return err
	}
	return b.sendTodayList(ctx, chatID, user)
}

func (b *Bot) deleteActivityAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, activityID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	activity, err := b.activitySvc.Get(ctx, user.ID, activityID)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(chatID, "Activity not found or already deleted.")
		}
		return err
	}

	if err := b.activitySvc.Delete(ctx, user.ID, activityID); err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return b.sendText(chatID, "Activity not found or already deleted.")
		}
		return err
	}

	b.log.Info("activity deleted", zap.Uint("activity_id", activity.ID), zap.Uint("user_id", user.ID))
	if err := b.sendText(chatID, fmt.Sprintf("🗑 “%s” deleted.", escape(activity.Topic))); err != nil {
		return err
	}
	return b.sendTodayList(ctx, chatID, user)
}

func (b *Bot) sendTodayList(ctx context.Context, chatID int64, user *model.User) error {
	today := b.activitySvc.Today()
	activities, err := b.activitySvc.ListOn(ctx, user.ID, today)
	if err != nil {
		return err
	}

	if len(activities) == 0 {
		return b.sendText(chatID, "Nothing logged today yet. Record something with /log.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📅 <b>Today, %s</b>\n\n", today))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, activity := range activities {
		builder.WriteString(service.FormatActivity(activity))
		var row []tgbotapi.InlineKeyboardButton
		if !activity.IsCompleted() {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", activity.ID, shortTopic(activity.Topic, 20)), fmt.Sprintf("%s%d", cbCompletePrefix, activity.ID)))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 #%d", activity.ID), fmt.Sprintf("%s%d", cbDeletePrefix, activity.ID)))
		buttons = append(buttons, row)
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

// SendReminders delivers the daily reminder to every Telegram user.
func (b *Bot) SendReminders(ctx context.Context) error {
	return b.broadcast(ctx, "reminder", b.reminderSvc.Reminder)
}

// SendDailyReports delivers the full statistics summary to every Telegram user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	return b.broadcast(ctx, "report", b.reminderSvc.DailySummary)
}

func (b *Bot) broadcast(ctx context.Context, kind string, render func(context.Context, model.User) (string, error)) error {
	users, err := b.userRepo.ListTelegram(ctx)
	if err != nil {
		return err
	}
	sent := 0
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.TelegramID == nil {
			continue
		}
		text, err := render(ctx, user)
		if err != nil {
			b.log.Error("build "+kind, zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			b.log.Warn("send "+kind, zap.Int64("chat_id", *user.TelegramID), zap.Error(err))
			continue
		}
		sent++
	}
	b.log.Info(kind+"s sent", zap.Int("sent", sent), zap.Int("users", len(users)))
	return nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelLog):
		return true, b.startLogConversation(ctx, msg)
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func parseIDArgument(args string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func parseCallbackID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
