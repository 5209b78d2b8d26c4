package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/pkg/logger"
)

const rarityCommand = "/rarity"

// RarityBot answers /rarity lookups against a precomputed rarity table.
type RarityBot struct {
	logger *logger.Logger
	bot    *tgbot.Bot

	table           models.RarityLookup
	leaderboardSize int
	operatorChatID  string
	http            *http.Client
}

// NewRarityBot creates the bot and registers its handler. It does not start
// polling; call Start.
func NewRarityBot(token string, table models.RarityLookup, leaderboardSize int, operatorChatID string, logger *logger.Logger) (*RarityBot, error) {
	b := &RarityBot{
		logger:          logger,
		table:           table,
		leaderboardSize: leaderboardSize,
		operatorChatID:  operatorChatID,
		http:            &http.Client{Timeout: 30 * time.Second},
	}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(b.handler),
	}
	tb, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = tb

	return b, nil
}

// Start polls for updates until the context is cancelled.
func (b *RarityBot) Start(ctx context.Context) {
	b.logger.Info("Starting telegram bot")
	b.bot.Start(ctx)
}

func (b *RarityBot) handler(ctx context.Context, _ *tgbot.Bot, update *tgModels.Update) {
	if update.Message == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	chatID := update.Message.Chat.ID

	switch {
	case strings.HasPrefix(text, rarityCommand):
		args := strings.TrimSpace(trimCommand(text, rarityCommand))
		b.handleRarity(ctx, chatID, args)
	case text == "/start":
		b.sendText(ctx, chatID, "Send /rarity <number or title> for a token's rarity breakdown, or /rarity for the leaderboard.")
	}
}

// handleRarity answers the /rarity command: with no argument the top-N
// leaderboard, with an argument one token's breakdown plus its media.
func (b *RarityBot) handleRarity(ctx context.Context, chatID int64, args string) {
	if args == "" {
		rows := b.table.Top(b.leaderboardSize)
		if len(rows) == 0 {
			b.sendText(ctx, chatID, "The rarity table is empty. Run a crawl first.")
			return
		}
		b.sendText(ctx, chatID, FormatLeaderboard(rows, b.table))
		return
	}

	row, token, ok := b.table.Lookup(args)
	if !ok {
		b.sendText(ctx, chatID, fmt.Sprintf("No match found for '%s'.", args))
		return
	}

	caption := FormatRow(row, token, b.table.Traits())
	if token != nil && token.Media != "" {
		if b.sendPhoto(ctx, chatID, token, caption) {
			return
		}
		b.sendText(ctx, chatID, "Media not found, but here is the info:\n"+caption)
		return
	}
	b.sendText(ctx, chatID, caption)
}

// sendPhoto downloads the token media and attaches it. Reports success.
func (b *RarityBot) sendPhoto(ctx context.Context, chatID int64, token *models.TokenMetadata, caption string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, token.Media, nil)
	if err != nil {
		return false
	}
	resp, err := b.http.Do(req)
	if err != nil {
		b.logger.Warn("Failed to fetch media for attachment ", "key ", token.Key.String(), " error ", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	_, err = b.bot.SendPhoto(ctx, &tgbot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &tgModels.InputFileUpload{Filename: token.Key.String(), Data: bytes.NewReader(data)},
		Caption: caption,
	})
	if err != nil {
		b.logger.Error("Failed to send photo: ", err)
		b.notifyOperator(ctx, fmt.Sprintf("sendPhoto failed for %s: %v", token.Key.String(), err))
		return false
	}
	return true
}

// sendText sends a plain message. End users never see raw errors; failures
// are logged and forwarded to the operator chat.
func (b *RarityBot) sendText(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		b.logger.Error("Failed to send message: ", err)
		b.notifyOperator(ctx, fmt.Sprintf("sendMessage failed: %v", err))
	}
}

// notifyOperator forwards diagnostic detail to the operator chat, if one is
// configured.
func (b *RarityBot) notifyOperator(ctx context.Context, detail string) {
	if b.operatorChatID == "" {
		return
	}
	_, err := b.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: b.operatorChatID,
		Text:   detail,
	})
	if err != nil {
		b.logger.Error("Failed to notify operator: ", err)
	}
}

// trimCommand strips the command and an optional @botname mention.
func trimCommand(text, command string) string {
	rest := strings.TrimPrefix(text, command)
	if strings.HasPrefix(rest, "@") {
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	return rest
}
