package processor

import (
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/roadrisk/server/models"
)

// AssessmentQueue fans scoring work out to a bounded worker pool. Scoring
// is cheap CPU work with no ordering dependency between items, so workers
// pull freely.
type AssessmentQueue struct {
	items      chan *QueueItem
	workers    int
	workerFunc func(*QueueItem)
	wg         sync.WaitGroup
	shutdown   chan struct{}
	isRunning  bool
	mutex      sync.RWMutex
}

type QueueItem struct {
	Lat        float64
	Lon        float64
	ResultChan chan *AssessmentResult
	StartTime  time.Time
}

type AssessmentResult struct {
	Assessment *models.RiskAssessment
	Error      error
}

func NewAssessmentQueue(queueSize, workers int, workerFunc func(*QueueItem)) *AssessmentQueue {
	queue := &AssessmentQueue{
		items:      make(chan *QueueItem, queueSize),
		workers:    workers,
		workerFunc: workerFunc,
		shutdown:   make(chan struct{}),
		isRunning:  true,
	}

	for i := 0; i < workers; i++ {
		queue.wg.Add(1)
		go queue.worker()
	}

	return queue
}

func (q *AssessmentQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case item := <-q.items:
			if item != nil {
				func() {
					defer func() {
						if r := recover(); r != nil {
							select {
							case item.ResultChan <- &AssessmentResult{
								Error: fmt.Errorf("worker panic: %v", r),
							}:
							default:
							}
						}
					}()

					q.workerFunc(item)
				}()
			}
		case <-q.shutdown:
			return
		}
	}
}

func (q *AssessmentQueue) Enqueue(item *QueueItem) bool {
	q.mutex.RLock()
	if !q.isRunning {
		q.mutex.RUnlock()
		return false
	}
	q.mutex.RUnlock()

	select {
	case q.items <- item:
		return true
	default:
		return false
	}
}

func (q *AssessmentQueue) Size() int {
	return len(q.items)
}

func (q *AssessmentQueue) Capacity() int {
	return cap(q.items)
}

func (q *AssessmentQueue) Workers() int {
	return q.workers
}

func (q *AssessmentQueue) Shutdown(timeout time.Duration) error {
	q.mutex.Lock()
	if !q.isRunning {
		q.mutex.Unlock()
		return nil
	}
	q.isRunning = false
	q.mutex.Unlock()

	close(q.shutdown)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
