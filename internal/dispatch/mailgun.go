package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Kamar-Folarin/github-reporter/internal/config"
	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/report"
)

// Message is an HTML email with inline images.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Inline  []report.Chart
}

// MailgunSender posts raw MIME messages to the Mailgun messages.mime endpoint.
type MailgunSender struct {
	mg      *mailgun.MailgunImpl
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewMailgunSender creates a sender limited to cfg.SendsPerSecond.
func NewMailgunSender(cfg config.MailConfig, httpClient *http.Client, logger *logrus.Logger) *MailgunSender {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIURL != "" {
		mg.SetAPIBase(strings.TrimSuffix(cfg.APIURL, "/"))
	}
	if httpClient != nil {
		mg.SetClient(httpClient)
	}
	return &MailgunSender{
		mg:      mg,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendsPerSecond), 1),
		logger:  logger,
	}
}

// BuildMIME encodes msg as multipart/related with the HTML body first and
// each image as an inline part addressed by its Content-Id.
func BuildMIME(msg Message, now time.Time) ([]byte, error) {
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)
	e.Headers.Set("Date", now.UTC().Format(time.RFC1123Z))

	for _, img := range msg.Inline {
		a, err := e.Attach(bytes.NewReader(img.PNG), img.Name+".png", "image/png")
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", img.Name, err)
		}
		a.HTMLRelated = true
		a.Header.Set("Content-ID", "<"+img.Name+">")
	}
	return e.Bytes()
}

// Send delivers msg, waiting for the rate limiter first.
func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperrors.NewRenderOrDispatchError("mail rate limiter", err)
	}

	raw, err := BuildMIME(msg, time.Now())
	if err != nil {
		return apperrors.NewRenderOrDispatchError("failed to build mime message", err)
	}

	m := s.mg.NewMIMEMessage(io.NopCloser(bytes.NewReader(raw)), msg.To...)
	resp, id, err := s.mg.Send(ctx, m)
	if err != nil {
		return apperrors.NewRenderOrDispatchError("mailgun rejected message", err)
	}

	s.logger.WithFields(logrus.Fields{
		"subject":    msg.Subject,
		"recipients": len(msg.To),
		"message_id": id,
		"response":   resp,
	}).Info("Sent email")
	return nil
}
