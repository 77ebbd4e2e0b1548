package telegram

import (
	"context"
	"strconv"
	"sync"

	"chucky-bot/internal/infra/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommandHandler receives every text message a chat sends to the bot.
type CommandHandler interface {
	Handle(ctx context.Context, senderID, text string) error
}

// Poller long-polls updates and hands text messages to the handler using a
// fixed number of update workers.
type Poller struct {
	bot           *tgbotapi.BotAPI
	handler       CommandHandler
	updateWorkers int
	log           *zerolog.Logger
}

func NewPoller(bot *tgbotapi.BotAPI, handler CommandHandler, updateWorkers int, logger *zerolog.Logger) *Poller {
	if updateWorkers <= 0 {
		updateWorkers = 5
	}
	return &Poller{
		bot:           bot,
		handler:       handler,
		updateWorkers: updateWorkers,
		log:           logger,
	}
}

// Start blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := p.bot.GetUpdatesChan(u)
	defer p.bot.StopReceivingUpdates()

	return p.run(ctx, updates)
}

func (p *Poller) run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < p.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := p.handleUpdate(ctx, up); err != nil {
					p.log.Warn().Err(err).Int("worker", id).Int("update_id", up.UpdateID).Msg("telegram update failed")
				}
			}
		}(i)
	}

	defer func() {
		close(updateChan)
		wg.Wait()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			updateChan <- up
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	return p.handler.Handle(ctx, strconv.FormatInt(msg.Chat.ID, 10), msg.Text)
}
