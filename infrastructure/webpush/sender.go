package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"reelshare/domain/model"
	"reelshare/domain/repository"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

type Options struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
	HTTPClient *http.Client
}

type Sender struct {
	opts Options
}

// NewSender returns nil when either VAPID key is missing so callers can treat push as disabled.
func NewSender(opts Options) repository.IPushSender {
	if opts.PublicKey == "" || opts.PrivateKey == "" {
		return nil
	}
	if opts.TTL <= 0 {
		opts.TTL = 86400
	}
	return &Sender{opts: opts}
}

func (s *Sender) PublicKey() string {
	return s.opts.PublicKey
}

func (s *Sender) Send(ctx context.Context, sub *model.PushSubscription, message model.PushMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	options := &webpushgo.Options{
		Subscriber:      s.opts.Subject,
		VAPIDPublicKey:  s.opts.PublicKey,
		VAPIDPrivateKey: s.opts.PrivateKey,
		TTL:             s.opts.TTL,
	}
	if s.opts.HTTPClient != nil {
		options.HTTPClient = s.opts.HTTPClient
	}
	resp, err := webpushgo.SendNotificationWithContext(ctx, body, &webpushgo.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpushgo.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, options)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return repository.ErrSubscriptionGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}
