package queue

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

func testJob(tag string) Job {
	return Job{
		Tag: tag,
		Target: models.TargetProperty{
			Price:     10000000,
			TotalArea: 50,
			Rooms:     2,
		},
	}
}

func TestNewAnalysisQueue(t *testing.T) {
	logger := logrus.New()
	q := NewAnalysisQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestAnalysisQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewAnalysisQueue(2, logger)

	// Test successful push
	err := q.Push(testJob("a"))
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	_ = q.Push(testJob("b"))
	err = q.Push(testJob("c"))
	assert.Equal(t, ErrQueueFull, err)

	// Drain pending jobs, then test closed queue
	<-q.Jobs()
	<-q.Jobs()
	q.Close()
	err = q.Push(testJob("d"))
	assert.Equal(t, ErrQueueClosed, err)
}

func TestAnalysisQueue_Jobs(t *testing.T) {
	logger := logrus.New()
	q := NewAnalysisQueue(10, logger)

	assert.NoError(t, q.Push(testJob("first")))
	assert.NoError(t, q.Push(testJob("second")))

	got := <-q.Jobs()
	assert.Equal(t, "first", got.Tag)
	got = <-q.Jobs()
	assert.Equal(t, "second", got.Tag)
}

func TestAnalysisQueue_DrainAfterClose(t *testing.T) {
	logger := logrus.New()
	q := NewAnalysisQueue(10, logger)

	assert.NoError(t, q.Push(testJob("pending")))
	assert.NoError(t, q.Close())

	// Pending jobs survive the close
	got, ok := <-q.Jobs()
	assert.True(t, ok)
	assert.Equal(t, "pending", got.Tag)

	// Then the channel reports closed
	_, ok = <-q.Jobs()
	assert.False(t, ok)
}

func TestAnalysisQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewAnalysisQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	select {
	case <-q.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}
