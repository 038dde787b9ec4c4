package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const pushPath = "/v2/bot/message/push"

// Client клиент LINE Messaging API (push-сообщения участникам)
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	log         Logger
}

// NewClient создает новый экземпляр клиента LINE
func NewClient(baseURL, accessToken string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// PushText отправляет текстовое сообщение пользователю LINE
func (c *Client) PushText(ctx context.Context, to, text string) error {
	return c.push(ctx, to, Message{Type: MessageTypeText, Text: text})
}

// PushSticker отправляет стикер пользователю LINE
func (c *Client) PushSticker(ctx context.Context, to, packageID, stickerID string) error {
	return c.push(ctx, to, Message{Type: MessageTypeSticker, PackageID: packageID, StickerID: stickerID})
}

// PushImage отправляет изображение пользователю LINE (URL должны быть HTTPS)
func (c *Client) PushImage(ctx context.Context, to, originalURL, previewURL string) error {
	return c.push(ctx, to, Message{Type: MessageTypeImage, OriginalContentURL: originalURL, PreviewImageURL: previewURL})
}

func (c *Client) push(ctx context.Context, to string, msg Message) error {
	if c.accessToken == "" {
		return ErrNotConfigured
	}
	if to == "" {
		return ErrEmptyRecipient
	}

	body, err := json.Marshal(PushRequest{
		To:       to,
		Messages: []Message{msg},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pushPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		c.log.Info("LINE: %s message sent to %s", msg.Type, to)
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%w: %s", ErrInvalidRequest, apiErr.Message)
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}
}
