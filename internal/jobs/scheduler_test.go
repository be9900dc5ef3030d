package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_AddAndRemove(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob(OverdueOrdersJobName, "0 8 * * *", func() {}))
	require.NoError(t, s.AddJob(ExpiredQuotesJobName, "30 0 8 * * *", func() {}))
	assert.ElementsMatch(t, []string{OverdueOrdersJobName, ExpiredQuotesJobName}, s.GetJobNames())

	assert.ErrorContains(t, s.AddJob(OverdueOrdersJobName, "@daily", func() {}), "already exists")
	assert.Error(t, s.AddJob("broken", "every tuesday", func() {}))

	require.NoError(t, s.RemoveJob(OverdueOrdersJobName))
	assert.Equal(t, []string{ExpiredQuotesJobName}, s.GetJobNames())
	assert.Error(t, s.RemoveJob(OverdueOrdersJobName))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs int32
	require.NoError(t, s.AddJob("tick", "@every 1s", func() { atomic.AddInt32(&runs, 1) }))

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}
