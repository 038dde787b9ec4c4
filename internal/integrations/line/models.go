package line

// Типы сообщений LINE
const (
	MessageTypeText    = "text"
	MessageTypeSticker = "sticker"
	MessageTypeImage   = "image"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// PushRequest тело запроса push-сообщения
type PushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Message сообщение LINE. Заполняются поля, соответствующие Type
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`

	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

// ErrorResponse модель ошибки LINE API
type ErrorResponse struct {
	Message string `json:"message"`
}
