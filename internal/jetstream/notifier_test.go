package jetstream

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// clientMock mirrors mock.ClientMock locally to avoid an import cycle with
// the mock subpackage.
type clientMock struct {
	mock.Mock
}

func (m *clientMock) SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error {
	args := m.Called(ctx, streamConfig)
	return args.Error(0)
}

func (m *clientMock) Publish(subject string, data []byte, headers map[string]string) error {
	args := m.Called(subject, data, headers)
	return args.Error(0)
}

func (m *clientMock) Close() { m.Called() }

func (m *clientMock) NatsConn() *nats.Conn { return nil }

func init() {
	// Publish paths log through the global, so it needs a safe sink
	logger.Log = zap.NewNop()
}

func TestRunSummaryNotifier_Publish(t *testing.T) {
	client := new(clientMock)
	notifier := NewRunSummaryNotifier(client, "migration_summaries", "v1.migration.summary")
	event := model.RunSummaryEvent{
		RunID:       "run-1",
		Stage:       "migrate",
		Source:      model.SystemHubspot,
		Target:      model.SystemFwdCRM,
		Environment: tenant.EnvSandbox,
		Summary:     model.Summary{Created: 3, Updated: 1},
	}

	client.On("Publish", "v1.migration.summary.sandbox", mock.Anything, mock.MatchedBy(func(h map[string]string) bool {
		return h["Run-Id"] == "run-1" && h["Stage"] == "migrate"
	})).Return(nil)

	err := notifier.PublishRunSummary(context.Background(), event)

	require.NoError(t, err)
	client.AssertExpectations(t)

	// Payload round-trips as JSON
	data := client.Calls[0].Arguments.Get(1).([]byte)
	var decoded model.RunSummaryEvent
	require.NoError(t, utils.UnmarshalJSON(data, &decoded))
	assert.Equal(t, event.RunID, decoded.RunID)
	assert.Equal(t, 3, decoded.Summary.Created)
}

func TestRunSummaryNotifier_PublishError(t *testing.T) {
	client := new(clientMock)
	notifier := NewRunSummaryNotifier(client, "migration_summaries", "v1.migration.summary")

	client.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nats.ErrConnectionClosed)

	err := notifier.PublishRunSummary(context.Background(), model.RunSummaryEvent{Environment: tenant.EnvSandbox})

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNATS)
}

func TestRunSummaryNotifier_Setup(t *testing.T) {
	client := new(clientMock)
	notifier := NewRunSummaryNotifier(client, "migration_summaries", "v1.migration.summary")

	client.On("SetupStream", mock.Anything, mock.MatchedBy(func(cfg *nats.StreamConfig) bool {
		return cfg.Name == "migration_summaries" && len(cfg.Subjects) == 1 &&
			cfg.Subjects[0] == "v1.migration.summary.>"
	})).Return(nil)

	err := notifier.Setup(context.Background())

	require.NoError(t, err)
	client.AssertExpectations(t)
}
