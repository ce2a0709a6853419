package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"anoa.com/skillswap/internal/entity"
	notifDto "anoa.com/skillswap/internal/modules/notification/dto"
	notifRepo "anoa.com/skillswap/internal/modules/notification/repository"
	"anoa.com/skillswap/pkg/mailer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DigestJobName = "unread-message-digest"
	digestSubject = "You have unread messages on SkillSync"

	// MaxDigestAttempts is how many failed sends a notification gets before it is stamped and dropped.
	MaxDigestAttempts = 3
)

type DigestConfig struct {
	AppURL    string
	Delay     time.Duration
	BatchSize int
	// Schedule is a cron spec; empty means on-demand only.
	Schedule string
}

// DigestJob emails users about messages left unread for longer than Delay.
// Each notification is emailed at most once.
type DigestJob struct {
	repo   notifRepo.NotificationRepository
	sender mailer.Sender
	cfg    DigestConfig
	now    func() time.Time
}

func NewDigestJob(repo notifRepo.NotificationRepository, sender mailer.Sender, cfg DigestConfig) *DigestJob {
	if cfg.Delay <= 0 {
		cfg.Delay = 10 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &DigestJob{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (j *DigestJob) GetName() string {
	return DigestJobName
}

func (j *DigestJob) GetSchedule() string {
	return j.cfg.Schedule
}

func (j *DigestJob) Execute(ctx context.Context) error {
	result, err := j.Run(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("digest run finished",
		zap.Int("processed", result.Processed),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("errors", result.Errors),
	)
	return nil
}

type digestGroup struct {
	user          *entity.User
	notifications []entity.Notification
}

func (j *DigestJob) Run(ctx context.Context) (*notifDto.DigestResult, error) {
	now := j.now()
	pending, err := j.repo.ListPendingDigest(ctx, entity.NotificationMessageReceived, now.Add(-j.cfg.Delay), j.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	var order []uuid.UUID
	groups := make(map[uuid.UUID]*digestGroup)
	for _, n := range pending {
		g, ok := groups[n.UserID]
		if !ok {
			g = &digestGroup{user: n.User}
			groups[n.UserID] = g
			order = append(order, n.UserID)
		}
		g.notifications = append(g.notifications, n)
	}

	result := &notifDto.DigestResult{
		Success:   true,
		Processed: len(pending),
		Timestamp: now,
	}

	for _, userID := range order {
		g := groups[userID]
		ids := make([]uuid.UUID, len(g.notifications))
		for i, n := range g.notifications {
			ids[i] = n.ID
		}

		if g.user == nil || g.user.Email == "" {
			zap.L().Warn("dropping digest without recipient", zap.String("user_id", userID.String()))
			if err := j.repo.MarkEmailed(ctx, ids, now); err != nil {
				result.Errors++
				zap.L().Error("failed to stamp undeliverable notifications", zap.String("user_id", userID.String()), zap.Error(err))
			}
			continue
		}

		res := j.sender.Send(ctx, mailer.Message{
			To:      g.user.Email,
			Subject: digestSubject,
			HTML:    j.render(g),
		})
		if !res.Success {
			result.Errors++
			zap.L().Warn("failed to send digest email", zap.String("user_id", userID.String()), zap.Error(res.Error))
			j.recordFailure(ctx, g, ids, now)
			continue
		}

		if err := j.repo.MarkEmailed(ctx, ids, now); err != nil {
			result.Errors++
			zap.L().Error("failed to stamp emailed notifications", zap.String("user_id", userID.String()), zap.Error(err))
			continue
		}
		result.EmailsSent++
	}

	return result, nil
}

// recordFailure moves the group behind untried rows, giving up once any row reaches MaxDigestAttempts.
func (j *DigestJob) recordFailure(ctx context.Context, g *digestGroup, ids []uuid.UUID, now time.Time) {
	attempts := 0
	for _, n := range g.notifications {
		attempts = max(attempts, n.DigestAttempts+1)
	}

	var err error
	if attempts >= MaxDigestAttempts {
		zap.L().Warn("giving up on digest email", zap.String("user_id", g.user.ID.String()), zap.Int("attempts", attempts))
		err = j.repo.MarkEmailed(ctx, ids, now)
	} else {
		err = j.repo.RecordDigestFailure(ctx, ids)
	}
	if err != nil {
		zap.L().Error("failed to record digest failure", zap.String("user_id", g.user.ID.String()), zap.Error(err))
	}
}

func (j *DigestJob) render(g *digestGroup) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #6366f1;">You have %d unread message(s)</h2>`, len(g.notifications))
	b.WriteString("<ul>")
	for _, n := range g.notifications {
		fmt.Fprintf(&b, `<li><p>%s</p><a href="%s">View Message</a></li>`,
			html.EscapeString(n.Message),
			html.EscapeString(j.cfg.AppURL+n.Link),
		)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, `<p>These messages have been waiting for more than %s.</p>`, j.cfg.Delay)
	b.WriteString(`<p style="color: #6b7280; font-size: 12px;">You're receiving this email because you have unread messages on SkillSync.</p>`)
	b.WriteString("</div>")
	return b.String()
}
