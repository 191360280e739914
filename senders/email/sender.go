package email

import (
	"crypto/tls"
	"fmt"
	"html/template"
	"io"
	"net/smtp"
	"strings"
	"time"

	"github.com/facebookgo/muster"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/typhfeng/projecttrack"
)

// Config - SMTP settings
type Config struct {
	From        string
	SMTPHost    string
	SMTPPort    int
	InsecureTLS bool
	Username    string
	Password    string
	Delay       time.Duration
}

// Sender mails a digest of repositories that need attention. Snapshots
// arriving within the delay window collapse into one message carrying
// the most recent state.
type Sender struct {
	Recipient string
	Config    *Config
	Log       zerolog.Logger

	template *template.Template
	muster   *muster.Client
}

// Start - verify the SMTP server is reachable, then start batching
func (s *Sender) Start() error {
	t, err := smtp.Dial(fmt.Sprintf("%s:%d", s.Config.SMTPHost, s.Config.SMTPPort))
	if err != nil {
		return err
	}
	defer t.Close()
	// Test TLS handshake
	if err := t.StartTLS(&tls.Config{
		InsecureSkipVerify: s.Config.InsecureTLS,
		ServerName:         s.Config.SMTPHost,
	}); err != nil {
		return err
	}
	// Test authentication
	if s.Config.Password != "" {
		if err := t.Auth(smtp.PlainAuth(
			"",
			s.Config.Username,
			s.Config.Password,
			s.Config.SMTPHost,
		)); err != nil {
			return err
		}
	}
	if s.template, err = template.New("digestmail").Parse(digestTemplate); err != nil {
		return err
	}
	s.muster = &muster.Client{
		MaxBatchSize:         100,
		MaxConcurrentBatches: 1,
		BatchTimeout:         s.Config.Delay,
		BatchMaker:           s.digestBatchMaker,
	}
	return s.muster.Start()
}

// Stop - stop sender
func (s *Sender) Stop() error {
	return s.muster.Stop()
}

func (s *Sender) Send(dashboard *projecttrack.Dashboard) error {
	s.muster.Work <- dashboard
	return nil
}

func (s *Sender) sendMessage(recipient string, subject string, messageData interface{}) error {
	d := gomail.Dialer{
		Host: s.Config.SMTPHost,
		Port: s.Config.SMTPPort,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: s.Config.InsecureTLS,
			ServerName:         s.Config.SMTPHost,
		},
	}
	if s.Config.Password != "" {
		d.Auth = smtp.PlainAuth(
			"",
			s.Config.Username,
			s.Config.Password,
			s.Config.SMTPHost)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.Config.From)
	m.SetHeader("To", strings.Split(recipient, ",")...)

	m.SetHeader("Subject", subject)
	m.AddAlternativeWriter("text/html", func(w io.Writer) error {
		return s.template.Execute(w, messageData)
	})
	return d.DialAndSend(m)
}
