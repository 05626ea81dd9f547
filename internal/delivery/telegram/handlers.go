package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/NasaVasa/reservewatch/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxMessageLen = 3800

type Handlers struct {
	triggerUC   *usecase.TriggerUsecase
	orderUC     *usecase.OrderUsecase
	jobs        *usecase.Jobs
	allowedChat int64
	logger      *zap.Logger
}

// NewHandlers builds the command handlers. When allowedChat is non-zero only
// that chat may issue commands.
func NewHandlers(triggerUC *usecase.TriggerUsecase, orderUC *usecase.OrderUsecase, jobs *usecase.Jobs, allowedChat int64, logger *zap.Logger) *Handlers {
	return &Handlers{triggerUC: triggerUC, orderUC: orderUC, jobs: jobs, allowedChat: allowedChat, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.From == nil {
		return
	}
	if h.allowedChat != 0 && update.Message.Chat.ID != h.allowedChat {
		h.logger.Warn("command from unknown chat ignored", zap.Int64("chat_id", update.Message.Chat.ID))
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
		return
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", update.Message.From.ID),
		zap.String("username", update.Message.From.UserName),
		zap.String("command", command),
		zap.String("args", args),
	)

	h.reply(api, chatID, h.execute(ctx, command, args))
}

// execute runs one command and returns the reply text.
func (h *Handlers) execute(ctx context.Context, command, args string) string {
	switch command {
	case "start":
		return "Welcome to Reservewatch.\n\n" + HelpText
	case "help":
		return HelpText
	case "triggers":
		triggers, err := h.triggerUC.List(ctx)
		if err != nil {
			return h.errorMessage(err)
		}
		if len(triggers) == 0 {
			return "No triggers yet. Use /add_trigger to create one."
		}
		return formatTriggers(triggers)
	case "add_trigger":
		parsed, err := ParseTriggerArgs(args)
		if err != nil {
			return "Usage: /add_trigger <currency> <op> [amount] [once]"
		}
		input, err := usecase.ParseTriggerInput(parsed.Currency, parsed.Comparison, parsed.Amount, parsed.OnlyOnce)
		if err != nil {
			return h.errorMessage(err)
		}
		trigger, err := h.triggerUC.Create(ctx, input)
		if err != nil {
			h.logger.Warn("add_trigger failed", zap.String("args", args), zap.Error(err))
			return h.errorMessage(err)
		}
		h.logger.Info("add_trigger complete", zap.String("trigger_id", trigger.ID))
		return "Trigger created: " + formatTrigger(*trigger)
	case "edit_trigger":
		id, parsed, err := ParseEditTriggerArgs(args)
		if err != nil {
			return "Usage: /edit_trigger <id> <currency> <op> [amount] [once]"
		}
		input, err := usecase.ParseTriggerInput(parsed.Currency, parsed.Comparison, parsed.Amount, parsed.OnlyOnce)
		if err != nil {
			return h.errorMessage(err)
		}
		trigger, err := h.triggerUC.Update(ctx, id, input)
		if err != nil {
			return h.errorMessage(err)
		}
		return "Trigger updated: " + formatTrigger(*trigger)
	case "enable", "disable":
		id, err := ParseID(args)
		if err != nil {
			return fmt.Sprintf("Usage: /%s <id>", command)
		}
		if err := h.triggerUC.SetEnabled(ctx, id, command == "enable"); err != nil {
			h.logger.Warn(command+" failed", zap.String("trigger_id", id), zap.Error(err))
			return h.errorMessage(err)
		}
		h.logger.Info(command+" complete", zap.String("trigger_id", id))
		return fmt.Sprintf("Trigger %s %sd.", id, command)
	case "delete":
		id, err := ParseID(args)
		if err != nil {
			return "Usage: /delete <id>"
		}
		if err := h.triggerUC.Delete(ctx, id); err != nil {
			h.logger.Warn("delete failed", zap.String("trigger_id", id), zap.Error(err))
			return h.errorMessage(err)
		}
		return fmt.Sprintf("Trigger %s deleted.", id)
	case "reserves":
		reserves, err := h.triggerUC.ListReserves(ctx)
		if err != nil {
			return h.errorMessage(err)
		}
		if len(reserves) == 0 {
			return "No reserves observed yet."
		}
		return formatReserves(reserves)
	case "reset_reserves":
		if err := h.triggerUC.ResetReserves(ctx); err != nil {
			return h.errorMessage(err)
		}
		return "Observed reserves cleared."
	case "check":
		report, err := h.jobs.CheckNow(ctx)
		if err != nil {
			h.logger.Warn("check failed", zap.Error(err))
			return h.errorMessage(err)
		}
		if report.Skipped {
			return "No enabled triggers, nothing to check."
		}
		return fmt.Sprintf("Checked %d currencies, %d trigger(s) fired.", report.Currencies, len(report.Fired))
	case "notifications":
		enabled, set, err := ParseToggle(args)
		if err != nil {
			return "Usage: /notifications [on|off]"
		}
		if set {
			h.jobs.SetNotifications(enabled)
		}
		if h.jobs.NotificationsEnabled() {
			return "Notifications are on."
		}
		return "Notifications are off. Reserve checks are paused."
	case "orders":
		orders, err := h.orderUC.List(ctx)
		if err != nil {
			return h.errorMessage(err)
		}
		if len(orders) == 0 {
			return "No tracked orders. Use /track to add one."
		}
		return formatOrders(orders)
	case "track":
		id, token, err := ParseTrackArgs(args)
		if err != nil {
			return "Usage: /track <order_id> <token>"
		}
		order, err := h.orderUC.Track(ctx, id, token)
		if err != nil {
			h.logger.Warn("track failed", zap.String("order_id", id), zap.Error(err))
			return h.errorMessage(err)
		}
		return "Tracking " + formatOrder(*order)
	case "untrack":
		id, err := ParseID(args)
		if err != nil {
			return "Usage: /untrack <order_id>"
		}
		if err := h.orderUC.Untrack(ctx, id); err != nil {
			return h.errorMessage(err)
		}
		return fmt.Sprintf("Order %s is no longer tracked.", id)
	case "refresh_orders":
		if !h.jobs.RunOrderUpdateNow() {
			return "An order refresh is already running."
		}
		return "Order refresh started."
	default:
		h.logger.Warn("unknown command", zap.String("command", command))
		return "Unknown command.\n\n" + HelpText
	}
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInvalidCurrency):
		return "Invalid currency. Use a ticker like btc."
	case errors.Is(err, usecase.ErrInvalidComparison):
		return "Invalid operator. Use >, <, = or any."
	case errors.Is(err, usecase.ErrInvalidTarget):
		return "Invalid amount. Use a non-negative decimal like 0.5."
	case errors.Is(err, usecase.ErrTriggerNotFound):
		return "Trigger not found."
	case errors.Is(err, usecase.ErrOrderNotFound):
		return "Order not found on the exchange."
	case errors.Is(err, usecase.ErrInvalidOrder):
		return "Order id and token are required."
	case errors.Is(err, usecase.ErrNotificationsDisabled):
		return "Notifications are off. Turn them on with /notifications on."
	case errors.Is(err, domain.ErrFetchFailed):
		return "The exchange did not answer. Try again later."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatTrigger(trigger domain.ReserveTrigger) string {
	status := "disabled"
	if trigger.IsEnabled {
		status = "enabled"
	}
	line := fmt.Sprintf("%s [%s] %s", trigger.ID, status, trigger.Condition())
	if trigger.OnlyOnce {
		line += " (once)"
	}
	return line
}

func formatTriggers(triggers []domain.ReserveTrigger) string {
	lines := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		lines = append(lines, formatTrigger(trigger))
	}
	return truncateLines("Triggers:", lines)
}

func formatReserves(reserves []domain.ReserveSnapshot) string {
	lines := make([]string, 0, len(reserves))
	for _, reserve := range reserves {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(reserve.Currency), reserve.Amount.String()))
	}
	return truncateLines("Reserves:", lines)
}

func formatOrder(order domain.Order) string {
	return fmt.Sprintf(
		"%s %s %s → %s %s [%s]",
		order.ID,
		order.AmountFrom.String(),
		strings.ToUpper(order.FromCurrency),
		order.AmountTo.String(),
		strings.ToUpper(order.ToCurrency),
		order.Status.String(),
	)
}

func formatOrders(orders []domain.Order) string {
	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		lines = append(lines, formatOrder(order))
	}
	return truncateLines("Orders:", lines)
}

func truncateLines(header string, lines []string) string {
	var builder strings.Builder
	builder.WriteString(header)
	builder.WriteString("\n")
	for i, line := range lines {
		if builder.Len()+len(line)+1 > maxMessageLen {
			builder.WriteString(fmt.Sprintf("...and %d more", len(lines)-i))
			break
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
