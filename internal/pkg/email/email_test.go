package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/predict_admin_server/config"
)

func TestRenderNotification(t *testing.T) {
	out := RenderNotification("Maintenance <prévue>", "Ligne 1\n<b>Ligne 2</b>", "https://cdn/x.png")

	assert.Contains(t, out, "Maintenance &lt;prévue&gt;")
	assert.Contains(t, out, "Ligne 1<br><b>Ligne 2</b>")
	assert.Contains(t, out, `src="https://cdn/x.png"`)

	assert.NotContains(t, RenderNotification("t", "m", ""), "<img")
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{}
	cfg.Email.Provider = "smtp"
	assert.IsType(t, &SMTPSender{}, NewSender(cfg))

	cfg.Email.Provider = "api"
	assert.IsType(t, &BrevoSender{}, NewSender(cfg))
}

func TestBrevoSender_Transactional(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/smtp/email", r.URL.Path)
		assert.Equal(t, "xkeysib", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"<abc>"}`))
	}))
	defer server.Close()

	s := NewBrevoSender(&config.BrevoConfig{
		APIKey:      "xkeysib",
		BaseURL:     server.URL,
		SenderName:  "Predict",
		SenderEmail: "no-reply@predict.app",
	}, []string{"a@example.com", "b@example.com"})

	err := s.Send(context.Background(), &Message{Subject: "Hello", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", body["subject"])
	assert.Len(t, body["to"], 2)
}

func TestBrevoSender_Campaign(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/emailCampaigns":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			recipients := body["recipients"].(map[string]interface{})
			assert.Equal(t, []interface{}{float64(3)}, recipients["listIds"])
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 91}`))
		case "/emailCampaigns/91/sendNow":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := NewBrevoSender(&config.BrevoConfig{
		APIKey:      "k",
		BaseURL:     server.URL,
		SenderEmail: "no-reply@predict.app",
		ListIDs:     []int{3},
	}, nil)

	require.NoError(t, s.Send(context.Background(), &Message{Subject: "Promo", HTML: "<p>-20%</p>"}))
	assert.Equal(t, []string{"/emailCampaigns", "/emailCampaigns/91/sendNow"}, paths)
}

func TestBrevoSender_Errors(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer server.Close()

	msg := &Message{Subject: "s", HTML: "h"}

	err := NewBrevoSender(&config.BrevoConfig{BaseURL: server.URL, SenderEmail: "x@y"}, []string{"a@b"}).Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	err = NewBrevoSender(&config.BrevoConfig{APIKey: "k", BaseURL: server.URL, SenderEmail: "x@y"}, nil).Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.False(t, called)

	err = NewBrevoSender(&config.BrevoConfig{APIKey: "k", BaseURL: server.URL, SenderEmail: "x@y"}, []string{"a@b"}).Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSMTPSender_Preconditions(t *testing.T) {
	s := NewSMTPSender(&config.EmailConfig{SMTPHost: "localhost", SMTPPort: 2525})
	assert.ErrorIs(t, s.Send(context.Background(), &Message{}), ErrMissingSenderInfo)

	s = NewSMTPSender(&config.EmailConfig{SMTPHost: "localhost", SMTPPort: 2525, From: "a@b"})
	assert.ErrorIs(t, s.Send(context.Background(), &Message{}), ErrNoRecipients)
}
