package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shiftboard/hours-import/internal/config"
	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/notify"
	"github.com/wneessen/go-mail"
)

var errUnsupportedMailType = errors.New("不支持的邮件类型")

type mailTemplate struct {
	file    string
	subject string
}

// 邮件类型到模板文件和标题的映射
var mailTemplates = map[string]mailTemplate{
	domain.MailTypeNewWorkersImported: {
		file:    "new_workers_imported_email.html",
		subject: "Shiftboard 工时导入 - 新员工待完善资料",
	},
}

// renderer 在启动时解析全部模板，模板有问题时 worker 直接启动失败
type renderer struct {
	from      string
	templates map[string]*template.Template
}

func newRenderer(from, templatesDir string) (*renderer, error) {
	r := &renderer{from: from, templates: make(map[string]*template.Template, len(mailTemplates))}
	for mailType, mt := range mailTemplates {
		tmpl, err := template.ParseFiles(filepath.Join(templatesDir, mt.file))
		if err != nil {
			return nil, fmt.Errorf("解析邮件模板 %s 失败: %w", mt.file, err)
		}
		r.templates[mailType] = tmpl
	}
	return r, nil
}

func (r *renderer) render(m domain.MailMessage) (*mail.Msg, error) {
	tmpl, ok := r.templates[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnsupportedMailType, m.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(r.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, m.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(mailTemplates[m.Type].subject)

	return msg, nil
}

type sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

// handleDelivery 处理一条消息：无法解析或渲染的消息直接丢弃，发送失败的消息重新入队
func handleDelivery(logger *slog.Logger, r *renderer, s sender, d amqp.Delivery) {
	logger.Info("收到消息", slog.String("message", string(d.Body)))

	m := domain.MailMessage{}
	if err := json.Unmarshal(d.Body, &m); err != nil {
		logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	msg, err := r.render(m)
	if err != nil {
		logger.Error("无法构建邮件", slog.String("type", m.Type), slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	if err := s.DialAndSend(msg); err != nil {
		logger.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	r, err := newRenderer(cfg.Email.SMTP.Username, "./templates")
	if err != nil {
		logger.Error("无法加载邮件模板", slog.String("error", err.Error()))
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 与 api 端声明的参数保持一致：持久化、不自动删除、非独占
	q, err := ch.QueueDeclare(notify.MailQueue, true, false, false, false, nil)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 手动确认，发送失败的消息可以重新入队
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}
				handleDelivery(logger, r, client, d)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}
