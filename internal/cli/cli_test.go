package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

func TestRetry(t *testing.T) {
	calls := 0
	err := retry(3, 0, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = retry(3, 0, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"gather_stats", "send_reports", "send_instant_report", "serve", "migrate"} {
		cmd, _, err := rootCmd.Find([]string{name})
		assert.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSendInstantReportRequiresID(t *testing.T) {
	assert.Error(t, sendInstantReportCmd.Args(sendInstantReportCmd, nil))
	assert.NoError(t, sendInstantReportCmd.Args(sendInstantReportCmd, []string{"leits_MeetingBar"}))
}

func TestFinishBatch(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	a := &app{logger: logger}

	progress := &models.BatchProgress{Job: "send_reports", Total: 2, Processed: 1, Failed: 1}
	assert.NoError(t, a.finishBatch(progress, errors.New("acme_widget: boom")))

	listErr := errors.New("list repositories: connection refused")
	assert.Equal(t, listErr, a.finishBatch(nil, listErr))
}
