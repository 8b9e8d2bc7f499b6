package yagptclient

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	yandexgptclient "github.com/sheeiavellie/go-yandexgpt"
)

// ErrNotConfigured клиент создан без IAM токена или каталога
var ErrNotConfigured = errors.New("YandexGPT не настроен")

type Provider interface {
	// Complete системная инструкция и текст пользователя, ответ первой альтернативы
	Complete(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	IAMToken  string
	CatalogID string
	Timeout   time.Duration
	MaxTokens int
}

func NewClient(cfg Config) Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	return impl{
		client: yandexgptclient.NewYandexGPTClientWithIAMToken(cfg.IAMToken),
		cfg:    cfg,
	}
}

type impl struct {
	client *yandexgptclient.YandexGPTClient
	cfg    Config
}

func (i impl) Complete(ctx context.Context, system, user string) (string, error) {
	if i.cfg.IAMToken == "" || i.cfg.CatalogID == "" {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	request := yandexgptclient.YandexGPTRequest{
		ModelURI: yandexgptclient.MakeModelURI(i.cfg.CatalogID, yandexgptclient.YandexGPTModelLite),
		CompletionOptions: yandexgptclient.YandexGPTCompletionOptions{
			Stream: false,
			// ответ разбирается как JSON
			Temperature: 0.1,
			MaxTokens:   i.cfg.MaxTokens,
		},
		Messages: []yandexgptclient.YandexGPTMessage{
			{Role: yandexgptclient.YandexGPTMessageRoleSystem, Text: system},
			{Role: yandexgptclient.YandexGPTMessageRoleUser, Text: user},
		},
	}
	response, err := i.client.CreateRequest(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "ошибка запроса к YandexGPT")
	}
	for _, alt := range response.Result.Alternatives {
		if text := strings.TrimSpace(alt.Message.Text); text != "" {
			return text, nil
		}
	}
	return "", errors.New("YandexGPT вернул пустой ответ")
}
