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

	app "rice-bot/internal/application"
	"rice-bot/internal/container"
	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/pkg/apperr"
	"rice-bot/internal/pkg/logger"
)

const (
	msgStart = `👋 Hi! I help identify rice leaf diseases from photos.

📸 Send me a photo of a rice leaf and I will check it for disease.

📋 Commands:
/check — start a new check
/guide — how to take a good photo
/help — help
/cancel — cancel the current check`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of a single rice leaf
2️⃣ Wait while the image is analyzed
3️⃣ Read the diagnosis: disease, symptoms and treatment

📋 Commands:
/check — start a new check
/guide — photo tips
/cancel — cancel the current check`

	msgGuide = `📖 Taking a good photo:

• Select a leaf showing signs of disease
• Make sure the image is well-lit and clear
• Keep the leaf flat and fill most of the frame
• Avoid strong glare and busy backgrounds

The result shows the detected disease, the confidence level and management recommendations. The diagnosis is an aid, not a guarantee.`

	msgAwaitingPhoto  = "📸 Send a photo of a rice leaf to check it for disease."
	msgCancelled      = "❌ Check cancelled. Send /check to start again."
	msgSendPhoto      = "📸 Please send a photo of a rice leaf."
	msgUnknownCommand = "❓ Unknown command. Use /help."
	msgDownloadError  = "⚠️ " + apperr.MsgProcessingError
)

// messenger часть Telegram API, которой пользуется бот
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	messenger messenger
	token     string
	users     *app.UserService
	detection *app.DetectionService
	renderer  port.ResultRenderer
	log       logger.Logger
	client    *http.Client

	// fetch скачивает файл по FileID; в тестах подменяется
	fetch  func(ctx context.Context, fileID string) ([]byte, error)
	photos sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	c.Log.Infof(context.Background(), "Authorized on account %s", api.Self.UserName)

	b := newBot(api, token, c)
	b.api = api
	return b, nil
}

func newBot(m messenger, token string, c *container.Container) *Bot {
	b := &Bot{
		messenger: m,
		token:     token,
		users:     c.UserService,
		detection: c.DetectionService,
		renderer:  c.TextRenderer,
		log:       c.Log,
		client:    &http.Client{Timeout: time.Minute},
	}
	b.fetch = b.downloadFile
	return b
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.photos.Wait()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = logger.WithUserID(ctx, msg.From.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.acceptPhoto(ctx, msg.From.ID, msg.Chat.ID, fileID)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
		b.sendMessage(ctx, chatID, msgStart)

	case "help":
		b.sendMessage(ctx, chatID, msgHelp)

	case "guide":
		b.sendMessage(ctx, chatID, msgGuide)

	case "check":
		b.detection.CancelPending(userID)
		_, err = b.users.BeginCheck(ctx, userID, chatID)
		b.sendMessage(ctx, chatID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.detection.CancelPending(userID)
		b.sendMessage(ctx, chatID, msgCancelled)

	default:
		b.sendMessage(ctx, chatID, msgUnknownCommand)
	}

	if err != nil {
		b.log.Errorf(ctx, "command /%s: %v", msg.Command(), err)
	}
}

// acceptPhoto фиксирует выбор фото сразу при получении, до скачивания:
// более позднее фото всегда вытесняет более раннее. Скачивание и
// классификация идут в фоне.
func (b *Bot) acceptPhoto(ctx context.Context, userID, chatID int64, fileID string) {
	ticket, _, err := b.detection.Begin(ctx, userID, chatID)
	if err != nil {
		b.log.Errorf(ctx, "begin detection: %v", err)
		b.sendMessage(ctx, chatID, msgDownloadError)
		return
	}

	if text, err := b.renderer.Render(nil, true); err == nil && text != "" {
		b.sendMessage(ctx, chatID, text)
	}

	b.photos.Add(1)
	go func() {
		defer b.photos.Done()
		b.handlePhoto(ctx, ticket, fileID)
	}()
}

// handlePhoto скачивает фото и отправляет его на классификацию
func (b *Bot) handlePhoto(ctx context.Context, ticket *app.Ticket, fileID string) {
	imageData, err := b.fetch(ticket.Ctx(), fileID)
	if err != nil {
		b.log.Warnf(ctx, "Error downloading photo: %v", err)
		sub, err := b.detection.Abort(ticket, fmt.Errorf("%w: %w", entity.ErrTransport, err))
		b.reply(ctx, ticket.ChatID, sub, err)
		return
	}

	sub, err := b.detection.Run(ticket, imageData)
	b.reply(ctx, ticket.ChatID, sub, err)
}

// reply отправляет итог отправки, если она не была вытеснена
func (b *Bot) reply(ctx context.Context, chatID int64, sub *app.Submission, err error) {
	if sub == nil {
		b.log.Errorf(ctx, "detection: %v", err)
		b.sendMessage(ctx, chatID, msgDownloadError)
		return
	}
	if sub.Superseded {
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		b.sendMessage(ctx, chatID, "⚠️ "+sub.User.Error)
		return
	}

	text, err := b.renderer.Render(sub.User.Result, sub.User.IsProcessing())
	if err != nil {
		b.log.Errorf(ctx, "render result: %v", err)
		b.sendMessage(ctx, chatID, msgDownloadError)
		return
	}
	if text != "" {
		b.sendMessage(ctx, chatID, text)
	}
}

// imageFileID выбирает фото максимального размера или документ-изображение
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.messenger.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.token), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.messenger.Send(msg); err != nil {
		b.log.Errorf(ctx, "Error sending message: %v", err)
	}
}
