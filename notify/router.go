package notify

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/config"
	"github.com/typhfeng/projecttrack/helpers"
	"github.com/typhfeng/projecttrack/senders/email"
	"github.com/typhfeng/projecttrack/senders/file"
	"github.com/typhfeng/projecttrack/senders/webhook"
)

// SnapshotRouter fans dashboard snapshots out to every enabled sender.
type SnapshotRouter struct {
	SnapshotChannel <-chan *projecttrack.Dashboard
	Config          *config.Config
	Log             zerolog.Logger

	senders map[string]projecttrack.ISnapshotSender
	tomb    tomb.Tomb
}

func (r *SnapshotRouter) Start() error {
	r.senders = map[string]projecttrack.ISnapshotSender{}
	if r.Config.SMTP.Enable {
		delay, err := helpers.ParseDuration(r.Config.SMTP.Delay)
		if err != nil {
			return fmt.Errorf("can't parse delay with: %v", err)
		}
		r.senders["email"] = &email.Sender{
			Recipient: r.Config.SMTP.Recipient,
			Config: &email.Config{
				From:        r.Config.SMTP.From,
				SMTPHost:    r.Config.SMTP.Host,
				SMTPPort:    r.Config.SMTP.Port,
				InsecureTLS: !r.Config.SMTP.TLS,
				Username:    r.Config.SMTP.Username,
				Password:    r.Config.SMTP.Password,
				Delay:       delay,
			},
			Log: r.Log,
		}
	}
	if r.Config.Webhook.Enable {
		r.senders["webhook"] = &webhook.Sender{
			Method:  r.Config.Webhook.Method,
			URL:     r.Config.Webhook.URL,
			Headers: r.Config.Webhook.Headers,
		}
	}
	if r.Config.Common.DashboardFile != "" {
		r.senders["file"] = &file.File{
			DashboardFile: helpers.ExpandPath(r.Config.Common.DashboardFile),
		}
	}

	for senderName, sender := range r.senders {
		if err := sender.Start(); err != nil {
			return err
		}
		r.Log.Debug().Str("service", senderName).Msg("started")
	}

	r.tomb.Go(func() error {
		for {
			select {
			case <-r.tomb.Dying():
				return nil
			case dashboard := <-r.SnapshotChannel:
				for senderName, sender := range r.senders {
					if err := sender.Send(dashboard); err != nil {
						r.Log.Error().Str("error", err.Error()).Str("sender", senderName).Msg("can't send snapshot")
					}
				}
			}
		}
	})
	return nil
}

func (r *SnapshotRouter) Stop() error {
	r.tomb.Kill(nil)
	r.tomb.Wait()
	for _, sender := range r.senders {
		sender.Stop()
	}
	return nil
}
