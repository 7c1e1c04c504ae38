package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/domain/entity"
	"github.com/medli/medli-api/pkg/helpers"
	"github.com/medli/medli-api/pkg/mailer"
	tpl "github.com/medli/medli-api/pkg/mailer/templates"
)

const publishTimeout = 3 * time.Second

// Notifier enqueues account notification emails for the email worker.
// A nil Notifier, a nil publisher or Enabled=false turns every call into a no-op.
type Notifier struct {
	Pub     Publisher
	Enabled bool
	Brand   tpl.Brand
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

func NewNotifier(pub Publisher, enabled bool, brand tpl.Brand, logger logrus.FieldLogger) *Notifier {
	return &Notifier{Pub: pub, Enabled: enabled, Brand: brand, Logger: logger, Now: time.Now}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User, meta RequestMeta) {
	n.send(ctx, tpl.Welcome, u, meta, nil)
}

func (n *Notifier) ProfileUpdated(ctx context.Context, u *entity.User, changes map[string]string, meta RequestMeta) {
	n.send(ctx, tpl.ProfileUpdated, u, meta, changes)
}

func (n *Notifier) PasswordChanged(ctx context.Context, u *entity.User, meta RequestMeta) {
	n.send(ctx, tpl.PasswordChanged, u, meta, nil)
}

func (n *Notifier) AccountDeleted(ctx context.Context, u *entity.User, meta RequestMeta) {
	n.send(ctx, tpl.AccountDeleted, u, meta, nil)
}

func (n *Notifier) send(ctx context.Context, template string, u *entity.User, meta RequestMeta, changes map[string]string) {
	if n == nil || !n.Enabled || n.Pub == nil || u == nil {
		return
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	opts := []tpl.Option{tpl.WithIP(meta.IP), tpl.WithUserAgent(meta.UserAgent), tpl.WithTime(now())}
	if len(changes) > 0 {
		opts = append(opts, tpl.WithChanges(changes))
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data:     tpl.NewEmailData(n.Brand, template, u.Name, u.Email, opts...),
	}

	// The request may be finished by the time the broker answers.
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil {
		helpers.LogWarn(n.Logger, "enqueue email failed", err, logrus.Fields{"user_id": u.ID, "template": template})
	}
}
