package scheduler

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"go.uber.org/zap"
)

const ServerName = "scheduler"

// Server is the in-process intake for compile jobs. It runs as an
// internal job server under the run group and hands accepted jobs to
// the scheduler. Jobs submitted from outside arrive in SUBMITTED and
// are marked READY here, so the scheduler only ever sees ready jobs.
type Server struct {
	scheduler core.Scheduler
}

func (s *Server) SetParams(p interface{}) error {
	return nil
}

func (s *Server) Setup() error {
	return nil
}

func (s *Server) Start() error {
	sc := core.GetSystemComponents()
	if sc == nil {
		return fmt.Errorf("system components are not set up")
	}
	err := sc.Invoke(
		func(sched core.Scheduler) {
			s.scheduler = sched
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to find the scheduler. Reason:%s", err))
		return err
	}
	zap.L().Info("scheduler server is ready")
	return nil
}

func (s *Server) Cleanup() {
	zap.L().Info("scheduler server is cleaned up")
}

func (s *Server) Handle(j core.Job) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler server is not started")
	}
	jd := j.JobData()
	if jd.Status == core.SUBMITTED {
		jd.Status = core.READY
	}
	if jd.Status != core.READY {
		return fmt.Errorf("job(%s) is not ready. Status:%s", jd.ID, jd.Status)
	}
	s.scheduler.HandleJob(j)
	return nil
}
