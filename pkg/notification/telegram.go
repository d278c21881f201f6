// Package notification provides implementations for various notification services
package notification

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"slices"

	"github.com/kaviraj-dev/strikebot/pkg/config"
	"github.com/kaviraj-dev/strikebot/pkg/core"
	"github.com/kaviraj-dev/strikebot/pkg/engine"
	"github.com/kaviraj-dev/strikebot/pkg/logger"
	tb "gopkg.in/tucnak/telebot.v2"
)

const pollingTimeout = 10 * time.Second

var (
	squareOffRegexp = regexp.MustCompile(`/squareoff(?:\s+(?P<id>[\w-]+))?`)
	setRegexp       = regexp.MustCompile(`/set\s+(?P<key>\w+)\s+(?P<value>\S+)`)
)

// Controller is the engine surface the bot drives. Every call is safe
// from the bot's polling goroutine.
type Controller interface {
	Status() engine.Telemetry
	DailySummary() (engine.DaySummary, error)
	Summary() string
	SquareOff()
	SquareOffStrategy(id string) error
	UpdateConfig(patch map[string]any) []string
}

// Telegram implements core.NotifierWithStart over the Telegram bot API.
type Telegram struct {
	cfg         config.Telegram
	controller  Controller
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
	log         logger.Logger
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(controller Controller, cfg config.Telegram, log logger.Logger) (core.NotifierWithStart, error) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: pollingTimeout}
	middleware := newAuthMiddleware(poller, cfg.UserIDs, log)

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     cfg.Token,
		Poller:    middleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	setupKeyboard(menu)
	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &Telegram{
		cfg:         cfg,
		controller:  controller,
		defaultMenu: menu,
		client:      client,
		log:         log,
	}
	registerHandlers(client, bot)

	return bot, nil
}

// newAuthMiddleware creates a middleware to validate authorized users
func newAuthMiddleware(poller *tb.LongPoller, userIDs []int64, log logger.Logger) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(userIDs, int64(u.Message.Sender.ID)) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

// setupKeyboard configures the reply keyboard layout
func setupKeyboard(menu *tb.ReplyMarkup) {
	var (
		statusBtn    = menu.Text("/status")
		profitBtn    = menu.Text("/profit")
		summaryBtn   = menu.Text("/summary")
		pauseBtn     = menu.Text("/pause")
		resumeBtn    = menu.Text("/resume")
		squareOffBtn = menu.Text("/squareoff")
	)

	menu.Reply(
		menu.Row(statusBtn, profitBtn, summaryBtn),
		menu.Row(pauseBtn, resumeBtn, squareOffBtn),
	)
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/status", Description: "Engine and position status"},
		{Text: "/profit", Description: "Today's realized results"},
		{Text: "/summary", Description: "All-time trade summary"},
		{Text: "/pause", Description: "Pause new entries"},
		{Text: "/resume", Description: "Resume new entries"},
		{Text: "/squareoff", Description: "Force-close positions, optionally by strategy id"},
		{Text: "/set", Description: "Patch a config field: /set key value"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *Telegram) {
	client.Handle("/help", bot.HelpHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/profit", bot.ProfitHandle)
	client.Handle("/summary", bot.SummaryHandle)
	client.Handle("/pause", bot.PauseHandle)
	client.Handle("/resume", bot.ResumeHandle)
	client.Handle("/squareoff", bot.SquareOffHandle)
	client.Handle("/set", bot.SetHandle)
}

// Start begins the Telegram bot and notifies all authorized users
func (t *Telegram) Start() {
	go t.client.Start()
	t.sendToAll("Bot initialized.", t.defaultMenu)
}

// Notify sends a message to all authorized users
func (t *Telegram) Notify(text string) {
	t.sendToAll(text)
}

func (t *Telegram) sendToAll(text string, options ...any) {
	for _, user := range t.cfg.UserIDs {
		if _, err := t.client.Send(&tb.User{ID: user}, text, options...); err != nil {
			t.log.WithError(err).Error("failed to send notification")
		}
	}
}

func (t *Telegram) sendMessage(to *tb.User, text string, options ...any) {
	if _, err := t.client.Send(to, text, options...); err != nil {
		t.log.WithError(err).Error("failed to send message")
	}
}

// Command handlers
// ---------------

// HelpHandle displays available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		t.log.WithError(err).Error("failed to get commands")
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}
	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// StatusHandle reports the latest telemetry snapshot.
func (t *Telegram) StatusHandle(m *tb.Message) {
	t.sendMessage(m.Sender, formatStatus(t.controller.Status()))
}

// ProfitHandle reports today's realized results.
func (t *Telegram) ProfitHandle(m *tb.Message) {
	summary, err := t.controller.DailySummary()
	if err != nil {
		t.OnError(err)
		return
	}
	t.sendMessage(m.Sender, formatDaySummary(summary))
}

// SummaryHandle reports the all-time trade table.
func (t *Telegram) SummaryHandle(m *tb.Message) {
	t.sendMessage(m.Sender, fmt.Sprintf("```\n%s\n```", t.controller.Summary()))
}

// PauseHandle disables new entries; open positions keep their exits.
func (t *Telegram) PauseHandle(m *tb.Message) {
	t.controller.UpdateConfig(map[string]any{"trading_enabled": false})
	t.sendMessage(m.Sender, "Entries paused. Open positions are still managed.", t.defaultMenu)
}

// ResumeHandle re-enables new entries.
func (t *Telegram) ResumeHandle(m *tb.Message) {
	t.controller.UpdateConfig(map[string]any{"trading_enabled": true})
	t.sendMessage(m.Sender, "Entries resumed.", t.defaultMenu)
}

// SquareOffHandle force-closes all positions, or one strategy's when an
// id is given.
func (t *Telegram) SquareOffHandle(m *tb.Message) {
	id := parseSquareOffID(m.Text)
	if id == "" {
		t.controller.SquareOff()
		t.sendMessage(m.Sender, "All positions squared off.")
		return
	}

	if err := t.controller.SquareOffStrategy(id); err != nil {
		t.OnError(err)
		return
	}
	t.sendMessage(m.Sender, fmt.Sprintf("Squared off `%s`.", id))
}

// SetHandle patches one configuration field.
func (t *Telegram) SetHandle(m *tb.Message) {
	key, value, ok := parseSetCommand(m.Text)
	if !ok {
		t.sendMessage(m.Sender, "Invalid command.\nExample of usage:\n`/set target_points 25`")
		return
	}

	accepted := t.controller.UpdateConfig(map[string]any{key: value})
	if len(accepted) == 0 {
		t.sendMessage(m.Sender, fmt.Sprintf("Rejected: `%s`", key))
		return
	}
	t.sendMessage(m.Sender, fmt.Sprintf("Updated: `%s`", strings.Join(accepted, ", ")))
}

// Event handlers
// -------------

// OnTrade notifies users about confirmed fills.
func (t *Telegram) OnTrade(trade core.Trade) {
	t.Notify(formatTrade(trade))
}

// OnError notifies users about errors
func (t *Telegram) OnError(err error) {
	t.Notify(fmt.Sprintf("🛑 ERROR\n-----\n%s", err.Error()))
}
