//go:build unit
// +build unit

package scheduler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/gate"
	"github.com/stretchr/testify/assert"
)

var jm *core.JobManager

const FAILED_IN_PRE_PROCESS_JOB = "FAILED_in_pre_process_job"
const FAILED_IN_PROCESS_JOB = "FAILED_in_process_job"
const FAILED_IN_POST_PROCESS_JOB = "FAILED_in_post_process_job"
const SUCCESS_IN_POST_PROCESS_JOB = "success_in_post_process_job"
const PANIC_IN_PROCESS_JOB = "panic_in_process_job"

func TestMain(m *testing.M) {
	jm, _ = core.NewJobManager(
		&core.TranspileJob{},
		&FAILEDInPreProcessJob{},
		&FAILEDInProcessJob{},
		&FAILEDInPostProcessJob{},
		&successInPostProcessJob{},
		&panicInProcessJob{},
	)
	m.Run()
}

func TestHandleJob(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	err := s.StartContainer()
	assert.Nil(t, err)

	tests := []struct {
		name            string
		job             core.Job
		wantStatusSlice []core.Status
	}{
		{
			name: "handle transpile job in ready state",
			job:  testJob(t, core.TRANSPILE_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
		{
			name: "handle transpile job in FAILED",
			job:  testJob(t, core.TRANSPILE_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED in pre-processing job in ready state",
			job:  testJob(t, FAILED_IN_PRE_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.FAILED,
			},
		},
		{
			name: "handle FAILED in pre-processing job in FAILED state",
			job:  testJob(t, FAILED_IN_PRE_PROCESS_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED process job with pre-processing",
			job:  testJob(t, FAILED_IN_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name: "handle FAILED post-process job with FAILED",
			job:  testJob(t, FAILED_IN_POST_PROCESS_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED post-process job with pre-processing",
			job:  testJob(t, FAILED_IN_POST_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name: "handle success post-process job with pre-processing",
			job:  testJob(t, SUCCESS_IN_POST_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
		{
			name: "recover from panic in process",
			job:  testJob(t, PANIC_IN_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED, // The job panics, so it should end in FAILED
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobID := tt.job.JobData().ID
			var wg sync.WaitGroup
			wg.Add(1)
			nsc.HandleJobForTest(tt.job, &wg)
			wg.Wait()
			assert.Equal(
				t,
				tt.wantStatusSlice,
				nsc.statusManager.Get(jobID),
				fmt.Sprintf(
					"expected status slice:%s\n actual status slice:%s\n",
					printStatusSlice(tt.wantStatusSlice),
					printStatusSlice(nsc.statusManager.Get(jobID))))
		})
	}
}

func TestHandleJobTranspilesThroughTheQueue(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	err := s.StartContainer()
	assert.Nil(t, err)

	j := testJob(t, core.TRANSPILE_JOB, core.READY)
	var wg sync.WaitGroup
	wg.Add(1)
	nsc.HandleJobForTest(j, &wg)
	wg.Wait()

	assert.Equal(t, core.SUCCEEDED, j.JobData().Status)
	assert.NotNil(t, j.JobData().Transpiled)
	assert.Equal(t, len(j.JobData().Input.Ops), len(j.JobData().Transpiled.Ops))
	assert.Equal(t, 1, nsc.GetProcessedCount())
	assert.Equal(t, 0, nsc.GetCurrentQueueSize())
}

func testJob(t *testing.T, jobType string, firstStatus core.Status) core.Job {
	jd := core.NewJobData()
	jd.ID = uuid.NewString()
	jd.Input = testCircuit()
	jd.Status = firstStatus
	jd.JobType = jobType
	jd.Transpiler = core.DEFAULT_TRANSPILE_CONFIG()
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	j, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)
	return j
}

func testCircuit() *core.Circuit {
	c := core.NewCircuit("bell")
	c.Add(gate.NewIsing(-0.5), 0, 1)
	c.AddMeasure("m", 0, 1)
	return c
}

type FAILEDInPreProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInPreProcessJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInPreProcessJob{
		UnimplementedJob: u.New(jd, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInPreProcessJob) PreProcess() {
	j.JobData().Status = core.FAILED
	return
}

func (j *FAILEDInPreProcessJob) JobType() string {
	return FAILED_IN_PRE_PROCESS_JOB
}

type FAILEDInProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInProcessJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInProcessJob{
		UnimplementedJob: u.New(jd, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInProcessJob) Process() {
	j.JobData().Status = core.FAILED
	return
}

func (j *FAILEDInProcessJob) JobType() string {
	return FAILED_IN_PROCESS_JOB
}

type FAILEDInPostProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInPostProcessJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInPostProcessJob{
		UnimplementedJob: u.New(jd, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInPostProcessJob) Process() {
	j.JobData().Status = core.RUNNING
	return
}

func (j *FAILEDInPostProcessJob) PostProcess() {
	j.JobData().Status = core.FAILED
	return
}

func (j *FAILEDInPostProcessJob) JobType() string {
	return FAILED_IN_POST_PROCESS_JOB
}

type successInPostProcessJob struct {
	*core.UnimplementedJob
}

func (j *successInPostProcessJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &successInPostProcessJob{
		UnimplementedJob: u.New(jd, jc).(*core.UnimplementedJob),
	}
}

func (j *successInPostProcessJob) Process() {
	j.JobData().Status = core.SUCCEEDED
	return
}

func (j *successInPostProcessJob) PostProcess() {
	j.JobData().Status = core.SUCCEEDED
	return
}

func (j *successInPostProcessJob) JobType() string {
	return SUCCESS_IN_POST_PROCESS_JOB
}

type panicInProcessJob struct {
	*core.UnimplementedJob
}

func (j *panicInProcessJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &panicInProcessJob{
		UnimplementedJob: u.New(jd, jc).(*core.UnimplementedJob),
	}
}

func (j *panicInProcessJob) Process() {
	panic("panic in process")
}

func (j *panicInProcessJob) JobType() string {
	return PANIC_IN_PROCESS_JOB
}

func printStatusSlice(ss []core.Status) string {
	s := "[\n"
	for _, status := range ss {
		s += fmt.Sprintf("  %v,\n", status)
	}
	return s + "]"
}
