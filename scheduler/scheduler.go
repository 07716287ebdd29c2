package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"go.uber.org/zap"
)

type statusHistory map[string][]core.Status

// statusManager records every status a job goes through while the
// scheduler owns it. The history is dropped once the job is handled.
type statusManager struct {
	statusHistory statusHistory
	mu            sync.RWMutex
}

func newStatusManager() *statusManager {
	return &statusManager{
		statusHistory: make(statusHistory),
		mu:            sync.RWMutex{},
	}
}

func (s *statusManager) Update(job core.Job, status core.Status) {
	job.JobData().Status = status
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusHistory[job.JobData().ID] = append(s.statusHistory[job.JobData().ID], status)
}

func (s *statusManager) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statusHistory, jobID)
}

func (s *statusManager) Get(jobID string) []core.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusHistory[jobID]
}

type NormalScheduler struct {
	queue         *NormalQueue
	statusManager *statusManager
	processed     atomic.Int64
}

type jobInScheduler struct {
	job      core.Job
	finished *sync.WaitGroup
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	n.queue = &NormalQueue{}
	if err := n.queue.Setup(conf); err != nil {
		return err
	}
	n.statusManager = newStatusManager()
	return nil
}

// TODO: use rungroup
func (n *NormalScheduler) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the queue...")
			jis, err := n.queue.Dequeue(true)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to get a job from queue. Reason:%s", err))
				continue
			}
			jid := jis.job.JobData().ID
			zap.L().Debug(fmt.Sprintf("processing job:%s", jid))
			// TODO: not update status in scheduler
			n.statusManager.Update(jis.job, core.RUNNING)
			jis.job.JobContext().DBChan <- jis.job.Clone()
			n.process(jis)
			zap.L().Debug(fmt.Sprintf("finished to process job(%s), status:%s", jid, jis.job.JobData().Status))
		}
	}()
	return nil
}

// process must release the waiting handler even when Process panics.
func (n *NormalScheduler) process(jis *jobInScheduler) {
	defer func() {
		if r := recover(); r != nil {
			jd := jis.job.JobData()
			core.SetFailureWithError(jis.job, fmt.Errorf("panic in processing:%v", r))
			zap.L().Error(fmt.Sprintf("recovered from a panic in job(%s) processing. Reason:%v", jd.ID, r))
		}
		n.processed.Add(1)
		jis.finished.Done()
	}()
	jis.job.Process()
}

func (n *NormalScheduler) HandleJob(j core.Job) {
	zap.L().Debug(fmt.Sprintf("starting to handle job(%s) in %s", j.JobData().ID, j.JobData().Status))
	go func() {
		defer func() {
			zap.L().Debug(fmt.Sprintf("status history job(%s): %v", j.JobData().ID, n.statusManager.Get(j.JobData().ID)))
			n.statusManager.Delete(j.JobData().ID)
		}()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) HandleJobForTest(j core.Job, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) handleImpl(j core.Job) {
	for {
		jid := j.JobData().ID
		st := j.JobData().Status // must be READY
		n.statusManager.Update(j, st)
		zap.L().Debug(fmt.Sprintf("handling job(%s) in %s starting", jid, st))
		if st != core.READY {
			zap.L().Error(
				fmt.Sprintf("finished to handle job(%s) with unexpected status:%s", jid, st.String()))
			// not written to DB
			return
		}
		zap.L().Debug(fmt.Sprintf("handling job(%s). start pre-processing", jid))
		j.PreProcess()
		j.JobContext().DBChan <- j.Clone()
		if j.IsFinished() {
			n.statusManager.Update(j, j.JobData().Status)
			zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after pre-processing", jid))
			return
		}
		var wg sync.WaitGroup
		wg.Add(1)
		jis := &jobInScheduler{
			job:      j,
			finished: &wg,
		}
		n.queue.queueChan <- jis
		wg.Wait() // wait for processing
		zap.L().Debug(fmt.Sprintf("processed job(%s), status:%s", jid, j.JobData().Status))
		if j.IsFinished() {
			n.statusManager.Update(j, j.JobData().Status)
			j.JobContext().DBChan <- j.Clone()
			zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after processing with status:%s",
				jid, j.JobData().Status.String()))
			return
		}
		zap.L().Debug(fmt.Sprintf("handling job(%s). start post-processing", jid))
		j.PostProcess()
		if j.IsFinished() {
			n.statusManager.Update(j, j.JobData().Status)
			j.JobContext().DBChan <- j.Clone()
			zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after post-processing with status:%s",
				jid, j.JobData().Status.String()))
			return
		}
		zap.L().Debug(fmt.Sprintf("one more loop for job(%s)", jid))
	}
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.GetCurrentSize()
}

// GetProcessedCount reports how many jobs the worker has finished
// processing since Setup, failed ones included.
func (n *NormalScheduler) GetProcessedCount() int {
	return int(n.processed.Load())
}

func (n *NormalScheduler) IsOverRefillThreshold() bool {
	return n.queue.IsOverRefillThreshold()
}
