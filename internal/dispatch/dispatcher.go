package dispatch

import (
	"context"

	"github.com/Kamar-Folarin/github-reporter/internal/report"
)

// HTMLRenderer converts MJML markup to HTML.
type HTMLRenderer interface {
	Render(ctx context.Context, markup string) (string, error)
}

// Sender delivers a finished message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher converts a rendered report to HTML and mails it.
type Dispatcher struct {
	html   HTMLRenderer
	sender Sender
	from   string
	to     []string
}

// NewDispatcher creates a dispatcher sending from from to every address in to.
func NewDispatcher(html HTMLRenderer, sender Sender, from string, to []string) *Dispatcher {
	return &Dispatcher{html: html, sender: sender, from: from, to: to}
}

// Dispatch sends r. Any failure is a render-or-dispatch error.
func (d *Dispatcher) Dispatch(ctx context.Context, r *report.Rendered) error {
	html, err := d.html.Render(ctx, r.Markup)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, Message{
		From:    d.from,
		To:      d.to,
		Subject: r.Subject,
		HTML:    html,
		Inline:  r.Charts,
	})
}
