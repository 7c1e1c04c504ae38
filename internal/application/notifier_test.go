package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medli/medli-api/internal/domain/entity"
	tpl "github.com/medli/medli-api/pkg/mailer/templates"
)

func TestNotifierBuildsJob(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, true, tpl.Brand{AppName: "Medli", SupportURL: "https://medli.example/help"}, nil)
	n.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	n.ProfileUpdated(context.Background(), &entity.User{ID: "u1", Name: "Ada", Email: "ada@x.com"},
		map[string]string{"Name": "Ada"}, RequestMeta{IP: "203.0.113.9", UserAgent: "curl/8"})

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "ada@x.com", job.To)
	assert.Equal(t, tpl.ProfileUpdated, job.Template)
	assert.Equal(t, "Medli", job.Data["AppName"])
	assert.Equal(t, "203.0.113.9", job.Data["IP"])
	assert.Equal(t, "01 March 2026, 09:00 UTC", job.Data["Time"])

	_, _, _, err := tpl.Render(job.Template, job.Data)
	assert.NoError(t, err)
}

func TestNotifierDisabled(t *testing.T) {
	pub := &fakePublisher{}
	NewNotifier(pub, false, tpl.Brand{}, nil).Welcome(context.Background(), &entity.User{Email: "a@x.com"}, RequestMeta{})
	assert.Empty(t, pub.jobs)

	var nilNotifier *Notifier
	assert.NotPanics(t, func() { nilNotifier.Welcome(context.Background(), &entity.User{}, RequestMeta{}) })
}

func TestNotifierLogsPublishFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewNotifier(&fakePublisher{err: errors.New("channel closed")}, true, tpl.Brand{}, logger)

	n.PasswordChanged(context.Background(), &entity.User{ID: "u1", Email: "a@x.com"}, RequestMeta{})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "enqueue email failed", hook.LastEntry().Message)
	assert.Equal(t, tpl.PasswordChanged, hook.LastEntry().Data["template"])
}
