package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// Template identifies the kind of mail a job carries.
type Template string

const (
	TemplateRegistrationReceived Template = "registration_received"
	TemplateApproved             Template = "approved"
	TemplateRejected             Template = "rejected"
)

// Job is a queued notification mail.
type Job struct {
	Template Template `json:"template"`
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
	Attempt  int      `json:"attempt"`
}

// Queue enqueues notification mails on a Redis list consumed by the mail worker.
type Queue struct {
	rdb *redis.Client
	key string
}

// NewQueue creates a Queue on the mail queue key.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb, key: config.WorkerKey.MailQueue}
}

// Enqueue appends job to the queue.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	return nil
}

// RegistrationReceived confirms a new registration to the applicant.
func (q *Queue) RegistrationReceived(ctx context.Context, u *model.User) error {
	return q.Enqueue(ctx, RegistrationReceivedJob(u))
}

// UserDecided tells the applicant about an approve or reject decision.
func (q *Queue) UserDecided(ctx context.Context, u *model.User) error {
	job, ok := DecisionJob(u)
	if !ok {
		return nil
	}
	return q.Enqueue(ctx, job)
}

// RegistrationReceivedJob builds the confirmation mail for u.
func RegistrationReceivedJob(u *model.User) Job {
	return Job{
		Template: TemplateRegistrationReceived,
		To:       u.Email,
		Subject:  "İSTÜN Mezunlar Ağı başvurunuz alındı",
		HTML: fmt.Sprintf(
			"<p>Merhaba %s,</p><p>Başvurunuz alınmıştır ve yönetici onayı beklemektedir. "+
				"Sonuç e-posta ile bildirilecektir.</p>",
			html.EscapeString(u.FullName())),
	}
}

// DecisionJob builds the decision mail for u. ok is false while u is still pending.
func DecisionJob(u *model.User) (Job, bool) {
	name := html.EscapeString(u.FullName())
	switch u.Status {
	case model.StatusApproved:
		return Job{
			Template: TemplateApproved,
			To:       u.Email,
			Subject:  "İSTÜN Mezunlar Ağı üyeliğiniz onaylandı",
			HTML: fmt.Sprintf(
				"<p>Merhaba %s,</p><p>Üyeliğiniz onaylanmıştır. Artık giriş yapabilirsiniz.</p>", name),
		}, true
	case model.StatusRejected:
		return Job{
			Template: TemplateRejected,
			To:       u.Email,
			Subject:  "İSTÜN Mezunlar Ağı başvurunuz hakkında",
			HTML: fmt.Sprintf(
				"<p>Merhaba %s,</p><p>Başvurunuz reddedilmiştir.</p><p>Gerekçe: %s</p>",
				name, html.EscapeString(u.RejectionReason)),
		}, true
	default:
		return Job{}, false
	}
}
