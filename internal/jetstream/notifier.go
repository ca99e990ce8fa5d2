package jetstream

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// RunSummaryNotifier publishes batch run summaries onto a JetStream stream.
// Subjects are <base>.<environment> so consumers can filter per environment.
type RunSummaryNotifier struct {
	client      ClientInterface
	stream      string
	subjectBase string
}

// NewRunSummaryNotifier creates a new run summary notifier
func NewRunSummaryNotifier(client ClientInterface, stream, subjectBase string) *RunSummaryNotifier {
	return &RunSummaryNotifier{
		client:      client,
		stream:      stream,
		subjectBase: subjectBase,
	}
}

// Setup ensures the summary stream exists.
func (n *RunSummaryNotifier) Setup(ctx context.Context) error {
	streamConfig := &nats.StreamConfig{
		Name:      n.stream,
		Subjects:  []string{n.subjectBase + ".>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
	}
	if err := n.client.SetupStream(ctx, streamConfig); err != nil {
		return fmt.Errorf("%w: failed to setup summary stream: %w", apperrors.ErrNATS, err)
	}
	return nil
}

// PublishRunSummary publishes one run summary event.
func (n *RunSummaryNotifier) PublishRunSummary(ctx context.Context, event model.RunSummaryEvent) error {
	subject := fmt.Sprintf("%s.%s", n.subjectBase, event.Environment)
	data := utils.MustMarshalJSON(event)
	headers := map[string]string{
		"Run-Id": event.RunID,
		"Stage":  event.Stage,
	}

	if err := n.client.Publish(subject, data, headers); err != nil {
		return fmt.Errorf("%w: failed to publish run summary: %w", apperrors.ErrNATS, err)
	}
	logger.FromContext(ctx).Info("Published run summary",
		zap.String("subject", subject),
		zap.String("run_id", event.RunID),
		zap.String("stage", event.Stage),
	)
	return nil
}
