// Package notify envia avisos operativos a canales de Slack.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const sendTimeout = 5 * time.Second

// Notifier publica mensajes de error e informativos. Nunca devuelve error al llamador.
type Notifier interface {
	Error(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
}

// Channel describe un webhook y su canal destino.
type Channel struct {
	WebhookURL string
	Name       string
}

type SlackNotifier struct {
	logger  *zap.Logger
	env     string
	errorCh Channel
	infoCh  Channel
	post    func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewSlackNotifier devuelve un Notifier deshabilitado si no hay ningun webhook configurado.
func NewSlackNotifier(logger *zap.Logger, env string, errorCh, infoCh Channel) Notifier {
	if errorCh.WebhookURL == "" && infoCh.WebhookURL == "" {
		return NewDisabled()
	}
	return &SlackNotifier{
		logger:  logger,
		env:     env,
		errorCh: errorCh,
		infoCh:  infoCh,
		post:    slack.PostWebhookContext,
	}
}

func (n *SlackNotifier) Error(_ context.Context, msg string) {
	go n.send(n.errorCh, "Error", msg)
}

func (n *SlackNotifier) Info(_ context.Context, msg string) {
	go n.send(n.infoCh, "Info", msg)
}

// send es sincrono; Error e Info lo lanzan en su propia goroutine para no
// depender del contexto del request, que se cancela al responder.
func (n *SlackNotifier) send(ch Channel, level, msg string) error {
	if ch.WebhookURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	payload := &slack.WebhookMessage{
		Channel: channelName(ch.Name),
		Text:    fmt.Sprintf("[%s] %s: %s", strings.ToUpper(n.env), level, msg),
	}
	if err := n.post(ctx, ch.WebhookURL, payload); err != nil {
		n.logger.Warn("slack notification failed", zap.String("level", level), zap.Error(err))
		return err
	}
	return nil
}

func channelName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "#") {
		return name
	}
	return "#" + name
}

type disabled struct{}

// NewDisabled devuelve un Notifier que descarta todo.
func NewDisabled() Notifier { return disabled{} }

func (disabled) Error(context.Context, string) {}
func (disabled) Info(context.Context, string)  {}
