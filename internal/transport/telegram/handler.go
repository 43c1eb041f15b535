package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	monitorsvc "github.com/campwatch/campsite-telegram-bot/internal/modules/monitor/service"
	searchdomain "github.com/campwatch/campsite-telegram-bot/internal/modules/search/domain"
	searchsvc "github.com/campwatch/campsite-telegram-bot/internal/modules/search/service"
	"github.com/campwatch/campsite-telegram-bot/internal/shared/config"
	sharederrors "github.com/campwatch/campsite-telegram-bot/internal/shared/errors"
)

// Straight quotes plus the curly variants iOS keyboards produce.
var (
	quotedAddPattern = regexp.MustCompile(`/add\s+["“”]([^"“”]+)["“”]\s+(\S+)\s+(\S+)\s+(.+)`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const addUsage = `📝 Add New Search

Format: /add "Search Name" start_date end_date facility_id

Examples:
/add "Yosemite Trip" 2025-07-04 2025-07-06 232448
/add "Joshua Tree" 2025-10-15 2025-10-17 232472

Finding facility IDs:
Visit recreation.gov and search for your campground. The campground URL contains the ID, e.g. recreation.gov/camping/campgrounds/232448 → 232448`

// Handler processes incoming Telegram commands for managing search
// subscriptions.
type Handler struct {
	cfg        *config.Config
	searchSvc  *searchsvc.Service
	monitorSvc *monitorsvc.Service
}

func NewHandler(cfg *config.Config, searchSvc *searchsvc.Service, monitorSvc *monitorsvc.Service) *Handler {
	return &Handler{
		cfg:        cfg,
		searchSvc:  searchSvc,
		monitorSvc: monitorSvc,
	}
}

func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, h.handleAdd)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/list", bot.MatchTypeExact, h.handleList)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/toggle", bot.MatchTypePrefix, h.handleToggle)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/deleteall", bot.MatchTypeExact, h.handleDeleteAll)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/delete", bot.MatchTypePrefix, h.handleDelete)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/check", bot.MatchTypeExact, h.handleCheck)
}

// HandleUpdate is the default handler for anything that is not a registered
// command.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if !strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	h.reply(ctx, b, update, `❓ Unknown Command

Available Commands:
/add - Add a new campsite search
/list - Show your searches
/toggle <name> - Enable/disable a search
/delete <name> - Remove a search
/deleteall - Remove all searches (reset)
/check - Manually check all your searches
/help - Show help message`)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		slog.Error("Failed to send reply", "chat_id", update.Message.Chat.ID, "error", err)
	}
}

func userID(update *models.Update) string {
	return strconv.FormatInt(update.Message.From.ID, 10)
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	// First interaction creates the default configuration
	if _, err := h.searchSvc.EnsureUserConfig(userID(update)); err != nil {
		slog.Error("Failed to ensure user config", "user_id", userID(update), "error", err)
	}

	h.reply(ctx, b, update, `🏕️ Welcome to Campsite Bot!

I monitor recreation.gov campgrounds and notify you when sites become available.

Available Commands:
/add - Add a new campsite search
/list - Show your searches
/toggle <name> - Enable/disable a search
/delete <name> - Remove a search
/deleteall - Remove all searches (reset)
/check - Manually check all your searches
/help - Show this help message

Getting Started:
1. Use /add to create your first search
2. I'll check on a schedule automatically
3. You'll get notified here when sites are found!

Let's find you some campsites! 🎉`)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleStart(ctx, b, update)
}

// parseAddArgs extracts (name, startDate, endDate, facilityInput) from an
// /add command. The quoted form is tried first; the unquoted fallback uses
// the two date tokens to find where the name ends.
func parseAddArgs(text string) (name, startDate, endDate, facility string, ok bool) {
	if m := quotedAddPattern.FindStringSubmatch(text); m != nil {
		name = strings.Trim(m[1], `"“”`)
		return strings.TrimSpace(name), m[2], m[3], strings.TrimSpace(m[4]), name != ""
	}

	parts := strings.Fields(text)
	if len(parts) < 5 {
		return "", "", "", "", false
	}

	dateIdx := -1
	for i, part := range parts[1:] {
		if datePattern.MatchString(part) {
			dateIdx = i + 1
			break
		}
	}
	if dateIdx < 2 || dateIdx+2 >= len(parts) || !datePattern.MatchString(parts[dateIdx+1]) {
		return "", "", "", "", false
	}

	name = strings.Trim(strings.Join(parts[1:dateIdx], " "), `"“”`)
	facility = strings.Join(parts[dateIdx+2:], " ")
	return name, parts[dateIdx], parts[dateIdx+1], facility, name != "" && facility != ""
}

func (h *Handler) handleAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	name, startDate, endDate, facilityInput, ok := parseAddArgs(update.Message.Text)
	if !ok {
		h.reply(ctx, b, update, addUsage)
		return
	}

	facilityID, ok := searchsvc.ParseFacilityInput(facilityInput)
	if !ok {
		h.reply(ctx, b, update, fmt.Sprintf("❌ Invalid facility ID '%s'. Please use a numeric ID from a recreation.gov campground URL (e.g. 232448).", facilityInput))
		return
	}

	search, err := h.searchSvc.Add(userID(update), name, startDate, endDate, facilityID)
	if err != nil {
		if errors.Is(err, sharederrors.ErrValidation) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ %s", err.Error()))
		} else {
			slog.Error("Failed to add search", "user_id", userID(update), "error", err)
			h.reply(ctx, b, update, "❌ Error saving your search")
		}
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf(`✅ Added "%s"!

📅 Dates: %s to %s
🏕️ Facility: %s
🌙 Nights: %d
🔔 Status: Enabled

I'll check this search on a schedule and notify you when sites become available! 🎉

Use /list to see all your searches.`, search.Name, search.StartDate, search.EndDate, facilityID, search.Nights))
}

func (h *Handler) handleList(ctx context.Context, b *bot.Bot, update *models.Update) {
	searches, err := h.searchSvc.List(userID(update))
	if err != nil {
		slog.Error("Failed to list searches", "user_id", userID(update), "error", err)
		h.reply(ctx, b, update, "❌ Error loading your configuration")
		return
	}

	if len(searches) == 0 {
		h.reply(ctx, b, update, `📋 Your Searches

You don't have any campsite searches yet!

Use /add to create your first search and start monitoring campsites. 🏕️`)
		return
	}

	var text strings.Builder
	text.WriteString("📋 Your Searches\n\n")
	for i, search := range searches {
		status := "🟢 Enabled"
		if !search.Enabled {
			status = "🔴 Disabled"
		}
		text.WriteString(fmt.Sprintf("%d. %s\n%s\n📅 %s to %s\n🏕️ Facilities: %s\n🌙 Nights: %d\n\n",
			i+1, search.Name, status, search.StartDate, search.EndDate,
			strings.Join(search.Facilities, ", "), search.Nights))
	}
	text.WriteString("Use /toggle <name> to enable/disable or /delete <name> to remove.")

	h.reply(ctx, b, update, text.String())
}

func nameArg(text, command string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(text, command))
	return rest, rest != ""
}

func (h *Handler) handleToggle(ctx context.Context, b *bot.Bot, update *models.Update) {
	name, ok := nameArg(update.Message.Text, "/toggle")
	if !ok {
		h.reply(ctx, b, update, "Usage: /toggle <search_name>\n\nExample: /toggle Yosemite Trip")
		return
	}

	enabled, actualName, err := h.searchSvc.Toggle(userID(update), name)
	if err != nil {
		if errors.Is(err, sharederrors.ErrSearchNotFound) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ Search '%s' not found. Use /list to see your searches.", name))
		} else {
			slog.Error("Failed to toggle search", "user_id", userID(update), "error", err)
			h.reply(ctx, b, update, "❌ Error saving changes")
		}
		return
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	h.reply(ctx, b, update, fmt.Sprintf("✅ Search '%s' is now %s", actualName, state))
}

func (h *Handler) handleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	// Handler match order is not guaranteed, so the prefix match on /delete
	// can also catch /deleteall
	if strings.HasPrefix(update.Message.Text, "/deleteall") {
		h.handleDeleteAll(ctx, b, update)
		return
	}

	name, ok := nameArg(update.Message.Text, "/delete")
	if !ok {
		h.reply(ctx, b, update, "Usage: /delete <search_name>\n\nExample: /delete Yosemite Trip")
		return
	}

	actualName, err := h.searchSvc.Delete(userID(update), name)
	if err != nil {
		if errors.Is(err, sharederrors.ErrSearchNotFound) {
			h.reply(ctx, b, update, fmt.Sprintf("❌ Search '%s' not found. Use /list to see your searches.", name))
		} else {
			slog.Error("Failed to delete search", "user_id", userID(update), "error", err)
			h.reply(ctx, b, update, "❌ Error saving changes")
		}
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Deleted search '%s'", actualName))
}

func (h *Handler) handleDeleteAll(ctx context.Context, b *bot.Bot, update *models.Update) {
	count, err := h.searchSvc.DeleteAll(userID(update))
	if err != nil {
		if errors.Is(err, sharederrors.ErrNoSearches) {
			h.reply(ctx, b, update, "❌ You don't have any searches to delete.\n\nUse /add to create your first search!")
		} else {
			slog.Error("Failed to delete searches", "user_id", userID(update), "error", err)
			h.reply(ctx, b, update, "❌ Error saving changes")
		}
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Deleted all %d search(es)!\n\nYour campsite monitoring has been reset. Use /add to create new searches.", count))
}

func (h *Handler) handleCheck(ctx context.Context, b *bot.Bot, update *models.Update) {
	searches, err := h.searchSvc.List(userID(update))
	if err != nil {
		slog.Error("Failed to load searches", "user_id", userID(update), "error", err)
		h.reply(ctx, b, update, "❌ Error loading your configuration")
		return
	}

	enabled := lo.Filter(searches, func(search searchdomain.Search, _ int) bool {
		return search.Enabled
	})
	if len(enabled) == 0 {
		h.reply(ctx, b, update, "❌ You don't have any enabled searches to check.\n\nUse /add to create a search or /toggle to enable existing ones.")
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("🔍 Checking %d search(es) for available campsites...\n\nThis may take a few moments.", len(enabled)))

	summary, err := h.monitorSvc.RunPass(ctx, monitorsvc.OneUser(userID(update)))
	if err != nil {
		slog.Error("Manual check failed", "user_id", userID(update), "error", err)
		h.reply(ctx, b, update, "❌ Error during manual check. Please try again later.")
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      monitorsvc.FormatPassSummary(summary),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		slog.Error("Failed to send summary", "user_id", userID(update), "error", err)
	}
}
