package webhook

import (
	"context"

	"go.uber.org/zap"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/output"
)

// Result is the outcome of one configured webhook.
type Result struct {
	Name     string
	Skipped  bool
	Response *Response
}

// ShouldFire determines if a webhook should fire based on its trigger.
func ShouldFire(trigger config.WebhookTrigger, hasErrors bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasErrors
	}
}

// Dispatch sends report to every webhook whose trigger matches. Failures are
// logged and returned, never raised.
func (c *Client) Dispatch(ctx context.Context, hooks []config.WebhookConfig, report *output.Report, logger *zap.Logger) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, 0, len(hooks))
	for _, wh := range hooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if !ShouldFire(wh.Trigger, report.HasErrors()) {
			logger.Debug("webhook skipped", zap.String("webhook", name), zap.String("trigger", string(wh.Trigger)))
			results = append(results, Result{Name: name, Skipped: true})
			continue
		}

		resp := c.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		if resp.Success() {
			logger.Info("webhook sent",
				zap.String("webhook", name),
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", resp.Duration))
		} else {
			logger.Warn("webhook failed",
				zap.String("webhook", name),
				zap.Int("status", resp.StatusCode),
				zap.Error(resp.Error))
		}

		results = append(results, Result{Name: name, Response: resp})
	}

	return results
}
