package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

func TestClient_PushText(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pushPath, r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second, logger.Discard())

	require.NoError(t, c.PushText(context.Background(), "U123", "reminder"))
	assert.Equal(t, "U123", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, MessageTypeText, got.Messages[0].Type)
	assert.Equal(t, "reminder", got.Messages[0].Text)
}

func TestClient_PushStickerAndImage(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req.Messages...)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second, logger.Discard())

	require.NoError(t, c.PushSticker(context.Background(), "U123", "446", "1988"))
	require.NoError(t, c.PushImage(context.Background(), "U123", "https://cdn.example/a.jpg", "https://cdn.example/a_s.jpg"))

	require.Len(t, got, 2)
	assert.Equal(t, Message{Type: MessageTypeSticker, PackageID: "446", StickerID: "1988"}, got[0])
	assert.Equal(t, Message{
		Type:               MessageTypeImage,
		OriginalContentURL: "https://cdn.example/a.jpg",
		PreviewImageURL:    "https://cdn.example/a_s.jpg",
	}, got[1])
}

func TestClient_PushText_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message":"Invalid to"}`, wantErr: ErrInvalidRequest},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "token", time.Second, logger.Discard())
			assert.ErrorIs(t, c.PushText(context.Background(), "U123", "hi"), tt.wantErr)
		})
	}
}

func TestClient_PushText_NotConfigured(t *testing.T) {
	c := NewClient("http://localhost", "", time.Second, logger.Discard())

	assert.ErrorIs(t, c.PushText(context.Background(), "U123", "hi"), ErrNotConfigured)
}
