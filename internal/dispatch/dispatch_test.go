package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/github-reporter/internal/config"
	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/report"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMJMLRenderCachesByMarkup(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/render", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "app", user)
		assert.Equal(t, "secret", pass)

		var body mjmlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"html": "<html>" + body.MJML + "</html>", "errors": []any{}})
	}))
	defer server.Close()

	client, err := NewMJMLClient(config.RenderConfig{AppID: "app", SecretKey: "secret", APIURL: server.URL + "/v1/", CacheSize: 4}, server.Client(), testLogger())
	require.NoError(t, err)

	html, err := client.Render(context.Background(), "<mjml/>")
	require.NoError(t, err)
	assert.Equal(t, "<html><mjml/></html>", html)

	_, err = client.Render(context.Background(), "<mjml/>")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = client.Render(context.Background(), "<mjml></mjml>")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMJMLRenderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer server.Close()

	client, err := NewMJMLClient(config.RenderConfig{APIURL: server.URL, CacheSize: 1}, server.Client(), testLogger())
	require.NoError(t, err)

	_, err = client.Render(context.Background(), "<mjml/>")
	require.Error(t, err)
	assert.True(t, apperrors.IsRenderOrDispatchFailed(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func addresses(t *testing.T, msg *mail.Message, key string) []string {
	t.Helper()
	list, err := msg.Header.AddressList(key)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Address)
	}
	return out
}

func TestBuildMIME(t *testing.T) {
	raw, err := BuildMIME(Message{
		From:    "reports@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Daily updates of acme/widget (02 Jan 2024)",
		HTML:    `<img src="cid:views_chart">`,
		Inline:  []report.Chart{{Name: "views_chart", PNG: []byte("png-bytes")}},
	}, time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"reports@example.com"}, addresses(t, msg, "From"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, addresses(t, msg, "To"))
	assert.Equal(t, "Tue, 02 Jan 2024 06:00:00 +0000", msg.Header.Get("Date"))

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Daily updates of acme/widget (02 Jan 2024)", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/related", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, htmlPart.Header.Get("Content-Type"), "text/html")
	html, err := io.ReadAll(htmlPart)
	require.NoError(t, err)
	assert.Equal(t, `<img src="cid:views_chart">`, strings.TrimSpace(string(html)))

	imgPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/png", imgPart.Header.Get("Content-Type"))
	assert.Equal(t, "<views_chart>", imgPart.Header.Get("Content-Id"))
	assert.Contains(t, imgPart.Header.Get("Content-Disposition"), "inline")
	encoded, err := io.ReadAll(imgPart)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(string(encoded)), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(decoded))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMailgunSend(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v3/mg.example.com/messages.mime", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-123", pass)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, r.MultipartForm.Value["to"])
		files := r.MultipartForm.File["message"]
		require.Len(t, files, 1)
		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		msg, err := mail.ReadMessage(f)
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Header.Get("Subject"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	sender := NewMailgunSender(config.MailConfig{APIKey: "key-123", Domain: "mg.example.com", APIURL: server.URL + "/v3", SendsPerSecond: 100}, server.Client(), testLogger())
	err := sender.Send(context.Background(), Message{
		From:    "reports@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMailgunSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"'from' parameter is missing"}`))
	}))
	defer server.Close()

	sender := NewMailgunSender(config.MailConfig{APIKey: "key-123", Domain: "mg.example.com", APIURL: server.URL + "/v3", SendsPerSecond: 100}, server.Client(), testLogger())
	err := sender.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "hello", HTML: "<p>hi</p>"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRenderOrDispatchFailed(err))
}

type mockHTML struct{ mock.Mock }

func (m *mockHTML) Render(ctx context.Context, markup string) (string, error) {
	args := m.Called(ctx, markup)
	return args.String(0), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()
	html := new(mockHTML)
	sender := new(mockSender)
	charts := []report.Chart{{Name: "views_chart", PNG: []byte{1}}}

	html.On("Render", ctx, "<mjml/>").Return("<html/>", nil)
	sender.On("Send", ctx, Message{
		From:    "from@example.com",
		To:      []string{"to@example.com"},
		Subject: "subject",
		HTML:    "<html/>",
		Inline:  charts,
	}).Return(nil)

	d := NewDispatcher(html, sender, "from@example.com", []string{"to@example.com"})
	require.NoError(t, d.Dispatch(ctx, &report.Rendered{Subject: "subject", Markup: "<mjml/>", Charts: charts}))

	html.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestDispatcherStopsOnRenderFailure(t *testing.T) {
	ctx := context.Background()
	html := new(mockHTML)
	sender := new(mockSender)
	html.On("Render", ctx, "<mjml/>").Return("", apperrors.NewRenderOrDispatchError("boom", nil))

	d := NewDispatcher(html, sender, "from@example.com", []string{"to@example.com"})
	err := d.Dispatch(ctx, &report.Rendered{Markup: "<mjml/>"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRenderOrDispatchFailed(err))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
