package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/medli/medli-api/pkg/mailer"
	mailtpl "github.com/medli/medli-api/pkg/mailer/templates"
)

var ErrInvalidEmailJob = errors.New("invalid email job")

// PrepareEmailJob normalizes a job pulled off the queue. Template names are
// lower-cased and the recipient is copied into Data so templates can show it.
func PrepareEmailJob(job *mailer.EmailJob) error {
	job.To = strings.TrimSpace(job.To)
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidEmailJob)
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Template == "" {
		if strings.TrimSpace(job.Subject) == "" || (job.Text == "" && job.HTML == "") {
			return fmt.Errorf("%w: raw job needs subject and body", ErrInvalidEmailJob)
		}
		return nil
	}
	if !mailtpl.Known(job.Template) {
		return fmt.Errorf("%w: unknown template %q", ErrInvalidEmailJob, job.Template)
	}
	EnsureRecipientAndEmail(job)
	return nil
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
