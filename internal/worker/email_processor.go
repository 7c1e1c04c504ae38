package worker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/pkg/helpers"
	"github.com/medli/medli-api/pkg/mailer"
	mailtpl "github.com/medli/medli-api/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota // delivered
	Drop                   // malformed, never retried
	Requeue                // transient send failure
)

const sendTimeout = 15 * time.Second

// EmailProcessor renders queued email jobs and hands them to a Sender.
type EmailProcessor struct {
	Sender   mailer.Sender
	Resolver mailtpl.GeoResolver
	Logger   logrus.FieldLogger
}

func NewEmailProcessor(sender mailer.Sender, resolver mailtpl.GeoResolver, logger logrus.FieldLogger) *EmailProcessor {
	return &EmailProcessor{Sender: sender, Resolver: resolver, Logger: logger}
}

// Process handles one message body.
func (p *EmailProcessor) Process(ctx context.Context, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.Logger.WithError(err).Warn("bad email message")
		return Drop
	}
	if err := helpers.PrepareEmailJob(&job); err != nil {
		p.Logger.WithError(err).WithField("template", job.Template).Warn("dropping email job")
		return Drop
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		helpers.LocalizeTimesIfPossible(ctx, p.Resolver, job.Data)
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			p.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
			return Drop
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := p.Sender.Send(c, job.To, subject, text, html); err != nil {
		p.Logger.WithError(err).WithField("template", job.Template).Warn("send failed")
		return Requeue
	}
	return Ack
}

// Consume processes deliveries until ctx is done or the channel closes.
func (p *EmailProcessor) Consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch p.Process(ctx, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Drop:
				_ = msg.Nack(false, false)
			case Requeue:
				_ = msg.Nack(false, true)
			}
		}
	}
}
