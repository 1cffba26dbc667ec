// Package channel connects the agent to its inbound surfaces: the live
// Telegram group, the Telegram export file used for history ingestion, and
// the HTTP API.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"buddybot/internal/agent"
	"buddybot/internal/domain"
	"buddybot/internal/history"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramUpdateTimeout = 30 // seconds, long-polling

// Telegram listens for new messages in one group chat and answers them with
// the agent. It also resolves sender identities for the directory via the
// Bot API.
type Telegram struct {
	token     string
	channelID int64
	buddy     *agent.Buddy
	directory *history.Directory
	logger    *slog.Logger

	bot *tgbotapi.BotAPI
}

type TelegramConfig struct {
	Token     string
	ChannelID string
	Buddy     *agent.Buddy
	Aliases   map[int64]string // seeded into the identity directory
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	channelID, err := strconv.ParseInt(cfg.ChannelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram channel id %q: %w", cfg.ChannelID, err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := &Telegram{
		token:     cfg.Token,
		channelID: channelID,
		buddy:     cfg.Buddy,
		logger:    cfg.Logger,
	}
	t.directory = history.NewDirectory(history.DirectoryConfig{
		Resolver: t,
		Seed:     cfg.Aliases,
		Logger:   cfg.Logger,
	})
	return t, nil
}

// ResolveEntity looks a user up through the chat member API.
func (t *Telegram) ResolveEntity(_ context.Context, ref domain.PeerRef) (domain.Entity, error) {
	if t.bot == nil {
		return domain.Entity{}, fmt.Errorf("telegram not connected")
	}
	member, err := t.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: t.channelID,
			UserID: ref.UserID,
		},
	})
	if err != nil {
		return domain.Entity{}, fmt.Errorf("get chat member %d: %w", ref.UserID, err)
	}
	if member.User == nil {
		return domain.Entity{}, fmt.Errorf("chat member %d has no user", ref.UserID)
	}
	return domain.Entity{
		ID:        member.User.ID,
		FirstName: member.User.FirstName,
		LastName:  member.User.LastName,
	}, nil
}

// Start connects to Telegram and answers messages until ctx is done. A failed
// turn is logged and skipped; the listener keeps running.
func (t *Telegram) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected", "username", bot.Self.UserName, "id", bot.Self.ID)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = telegramUpdateTimeout
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID != t.channelID {
		return
	}
	if msg.From != nil && msg.From.ID == t.bot.Self.ID {
		return
	}

	var sender *domain.PeerRef
	if msg.From != nil {
		sender = &domain.PeerRef{UserID: msg.From.ID}
	}
	name := t.directory.Resolve(ctx, sender)

	humanMessage := fmt.Sprintf("%s: %s", name, msg.Text)
	t.logger.Debug("incoming message", "from", name, "text", msg.Text)

	resp, err := t.buddy.Reply(ctx, humanMessage)
	if err != nil {
		t.logger.Error("turn failed", "from", name, "err", err)
		return
	}

	reply := tgbotapi.NewMessage(t.channelID, resp.Answer)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := t.bot.Send(reply); err != nil {
		t.logger.Error("send failed", "err", err)
	}
}
