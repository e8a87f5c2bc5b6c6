package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetgrab/pkg/errors"
)

func TestClassifyDeadlineIsRenderTimeout(t *testing.T) {
	c := NewCapturer("", DefaultBrowserConfig(), nil)

	// chromedp surfaces an expired run context as a wrapped deadline error
	err := c.classify(fmt.Errorf("chromedp run: %w", context.DeadlineExceeded), "navigation failed")

	var perr *errors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrorTypeRenderTimeout, perr.Type)
	assert.Contains(t, perr.Message, "navigation failed")
}

func TestClassifyOtherFailuresAreTransport(t *testing.T) {
	c := NewCapturer("", DefaultBrowserConfig(), nil)

	cases := []error{
		stderrors.New("websocket url timeout"),
		stderrors.New("exec: chrome not found"),
		context.Canceled,
	}

	for _, cause := range cases {
		err := c.classify(cause, "screenshot failed")

		var perr *errors.Error
		require.ErrorAs(t, err, &perr, "cause: %v", cause)
		assert.Equal(t, errors.ErrorTypeTransport, perr.Type, "cause: %v", cause)
	}
}

func TestClassifiedErrorsAreNotRetried(t *testing.T) {
	// A render timeout means the page never became usable, so the attempt
	// is skipped rather than retried
	c := NewCapturer("", DefaultBrowserConfig(), nil)

	err := c.classify(context.DeadlineExceeded, "settle delay interrupted")
	var perr *errors.Error
	require.ErrorAs(t, err, &perr)
	assert.False(t, errors.IsRetryable(perr.Type))
}
