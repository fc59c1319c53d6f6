package providers

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"starbot/internal/structures"
)

const defaultNotifyTimeout = 5 * time.Second

// NotifierProviderInterface delivers deferred follow-up messages to a Slack
// response_url. Delivery is fire-and-forget: failures are logged and counted,
// never surfaced to the user, and never retried.
type NotifierProviderInterface interface {
	Notify(responseURL string, msg *structures.SlackMessage)
	Close()
}

type NotifierProvider struct {
	client  *http.Client
	logger  Logger
	metrics MetricsProviderInterface
	wg      sync.WaitGroup
	closed  atomic.Bool
}

func NewNotifierProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) NotifierProviderInterface {
	timeout := conf.Slack.RequestTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &NotifierProvider{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Notify posts msg to responseURL on a detached goroutine. The primary
// response path never blocks on, or fails because of, the delivery.
func (np *NotifierProvider) Notify(responseURL string, msg *structures.SlackMessage) {
	if responseURL == "" || msg == nil || np.closed.Load() {
		return
	}

	np.wg.Add(1)
	go func() {
		defer np.wg.Done()

		body, err := json.Marshal(msg)
		if err != nil {
			np.logger.Errorf(TypeNotify, "Marshal notification: %s", err)
			np.metrics.IncNotificationsTotal("error")
			return
		}

		resp, err := np.client.Post(responseURL, "application/json", bytes.NewReader(body))
		if err != nil {
			np.logger.Errorf(TypeNotify, "Deliver notification: %s", err)
			np.metrics.IncNotificationsTotal("error")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			np.logger.Warnf(TypeNotify, "Notification rejected with status %d", resp.StatusCode)
			np.metrics.IncNotificationsTotal("rejected")
			return
		}
		np.metrics.IncNotificationsTotal("ok")
	}()
}

// Close rejects new notifications and waits for in-flight deliveries.
func (np *NotifierProvider) Close() {
	np.closed.Store(true)
	np.wg.Wait()
}
