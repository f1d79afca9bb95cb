package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shiftboard/hours-import/internal/domain"
)

const MailQueue = "email_queue"

type SupervisorFinder interface {
	FindActiveSupervisors(ctx context.Context, orgID int64) ([]*domain.User, error)
}

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// MailNotifier 把新员工通知投递到邮件队列，由 mail worker 负责发送
type MailNotifier struct {
	supervisors    SupervisorFinder
	publisher      Publisher
	publishTimeout time.Duration
}

func NewMailNotifier(supervisors SupervisorFinder, publisher Publisher, publishTimeout time.Duration) *MailNotifier {
	return &MailNotifier{
		supervisors:    supervisors,
		publisher:      publisher,
		publishTimeout: publishTimeout,
	}
}

// NotifySupervisors 给组织内每个在职主管发送一封汇总邮件，列出本次自动创建的员工
func (n *MailNotifier) NotifySupervisors(ctx context.Context, orgID int64, names []string) error {
	supervisors, err := n.supervisors.FindActiveSupervisors(ctx, orgID)
	if err != nil {
		return fmt.Errorf("查询主管失败: %w", err)
	}
	if len(supervisors) == 0 {
		slog.Warn("组织内没有在职主管，跳过通知", "organization_id", orgID)
		return nil
	}

	var errs []error
	for _, s := range supervisors {
		msg := domain.MailMessage{
			Type: domain.MailTypeNewWorkersImported,
			To:   s.Email,
			Data: domain.NewWorkersImportedMailData{
				FullName:    s.FullName(),
				WorkerNames: names,
			},
		}
		if err := n.publish(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("通知 %s 失败: %w", s.Email, err))
		}
	}

	return errors.Join(errs...)
}

func (n *MailNotifier) publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.publishTimeout)
	defer cancel()

	return n.publisher.PublishWithContext(
		ctx,
		"",
		MailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
