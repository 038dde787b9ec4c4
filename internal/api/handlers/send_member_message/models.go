package send_member_message

// Типы отправляемых сообщений
const (
	messageTypeText    = "text"
	messageTypeSticker = "sticker"
	messageTypeImage   = "image"
)

// SendMessageRequest HTTP request model. Без type отправляется текст
type SendMessageRequest struct {
	Type *string `json:"type,omitempty"`
	Text string  `json:"text"`

	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`

	OriginalContentURL string  `json:"originalContentUrl,omitempty"`
	PreviewImageURL    *string `json:"previewImageUrl,omitempty"`
}
