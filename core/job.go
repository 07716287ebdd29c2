package core

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

var ErrorJobIDConflict = errors.New("jobID is already used")
var jobManager *JobManager

const (
	TRANSPILE_JOB = "transpile"
	VALIDATE_JOB  = "validate"
)

type Job interface {
	// Job Control
	New(*JobData, *JobContext) Job
	PreProcess()
	Process()
	PostProcess()
	IsFinished() bool

	// Data Access
	JobData() *JobData // Get mutable JobData
	JobType() string
	JobContext() *JobContext
	Clone() Job
}

type JobContext struct {
	*Channels
}

func NewJobContext() (*JobContext, error) {
	s := GetSystemComponents()
	if s == nil {
		return nil, fmt.Errorf("system components is not initialized")
	}
	c := s.Channels
	if c == nil {
		return nil, fmt.Errorf("channels is not initialized")
	}
	return &JobContext{
		Channels: GetSystemComponents().Channels,
	}, nil
}

type JobParam struct {
	JobID      string
	Circuit    *Circuit
	Transpiler *TranspileConfig
	JobType    string
}

// TranspileJob rewrites its input circuit into the native vocabulary of
// the target device. Validation runs in PreProcess so that an invalid
// job never reaches the queue.
type TranspileJob struct {
	jobData    *JobData
	jobContext *JobContext
}

func (j *TranspileJob) New(jd *JobData, jc *JobContext) Job {
	return &TranspileJob{
		jobData:    jd,
		jobContext: jc,
	}
}

func (j *TranspileJob) PreProcess() {
	if err := j.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a job(%s). Reason:%s",
			j.JobData().ID, err.Error()))
		SetFailureWithError(j, err)
		return
	}
	return
}

func (j *TranspileJob) preProcessImpl() (err error) {
	err = nil
	jd := j.JobData()
	s := GetSystemComponents()
	if verr := s.ValidateOnDevice(jd.Input); verr != nil {
		zap.L().Info(fmt.Sprintf("job(%s) rejected by device validation. Reason:%s",
			jd.ID, verr.Error()))
		return verr
	}
	return
}

func (j *TranspileJob) Process() {
	jd := j.JobData()
	if !jd.NeedTranspiling() {
		zap.L().Debug(fmt.Sprintf("skip transpiling a job(%s)/Transpiler:%v",
			jd.ID, jd.Transpiler))
		jd.Transpiled = jd.Input.Clone()
		jd.Status = SUCCEEDED
		jd.Ended = strfmt.DateTime(time.Now())
		return
	}
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(t Transpiler) error {
			return t.Transpile(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to transpile a job(%s). Reason:%s",
			jd.ID, err.Error()))
		SetFailureWithError(j, err)
	}
	zap.L().Debug(fmt.Sprintf("finished to process a job(%s)/status:%s", jd.ID, jd.Status))
}

func (j *TranspileJob) PostProcess() {
	jd := j.JobData()
	if jd.Status == SUCCEEDED && jd.Transpiled != nil {
		zap.L().Debug(fmt.Sprintf("job(%s) transpiled/ops:%d->%d/loops:%d",
			jd.ID, jd.Result.Stats.InputOps, jd.Result.Stats.OutputOps, jd.Result.Stats.Loops))
	}
	return
}

func (j *TranspileJob) IsFinished() bool {
	return j.JobData().Status == SUCCEEDED || j.JobData().Status == FAILED
}

func (j *TranspileJob) JobData() *JobData {
	return j.jobData
}

func (j *TranspileJob) JobType() string {
	return TRANSPILE_JOB
}

func (j *TranspileJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *TranspileJob) UpdateJobData(jd *JobData) {
	j.jobData = jd
}

func (j *TranspileJob) Clone() Job {
	cloned := &TranspileJob{
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

// ValidateJob only checks a circuit against the device and reports the
// findings; it never rewrites anything.
type ValidateJob struct {
	jobData    *JobData
	jobContext *JobContext
}

func (j *ValidateJob) New(jd *JobData, jc *JobContext) Job {
	return &ValidateJob{
		jobData:    jd,
		jobContext: jc,
	}
}

func (j *ValidateJob) PreProcess() {
	return
}

func (j *ValidateJob) Process() {
	jd := j.JobData()
	if err := GetSystemComponents().ValidateOnDevice(jd.Input); err != nil {
		SetFailureWithError(j, err)
		return
	}
	jd.Info = "circuit is valid on the device"
	jd.Status = SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
	return
}

func (j *ValidateJob) PostProcess() {
	return
}

func (j *ValidateJob) IsFinished() bool {
	return j.JobData().Status == SUCCEEDED || j.JobData().Status == FAILED
}

func (j *ValidateJob) JobData() *JobData {
	return j.jobData
}

func (j *ValidateJob) JobType() string {
	return VALIDATE_JOB
}

func (j *ValidateJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *ValidateJob) Clone() Job {
	cloned := &ValidateJob{
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

func GetJob(id string) (job Job) {
	job = nil
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(d DBManager) error {
			var getErr error
			job, getErr = d.Get(id)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a job(%s)", id))
		return nil
	}
	return job
}

func DeleteJob(id string) bool {
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(d DBManager) error {
			return d.Delete(id)
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to delete a job(%s)", id))
		return false
	}
	return true
}

// factory pattern
type JobManager struct {
	acceptableJobs []Job //empty jobs
}

func (j *JobManager) RegisterJob(jobs ...Job) error {
	for _, job := range jobs {
		// check if job is already registered
		for _, t := range j.acceptableJobs {
			if reflect.TypeOf(t) == reflect.TypeOf(job) {
				return fmt.Errorf("job:%s is already registered", job.JobType())
			}

		}
		zap.L().Debug(fmt.Sprintf("registering job type %s", job.JobType()))
		j.acceptableJobs = append(j.acceptableJobs, job)
	}
	return nil
}

func (j *JobManager) AcceptableJobTypes() []string {
	types := []string{}
	for _, job := range j.acceptableJobs {
		types = append(types, job.JobType())
	}
	return types
}

func (j *JobManager) NewJobWithValidation(param *JobParam, jc *JobContext) (Job, error) {
	if param.JobType == "" { // default job type
		param.JobType = TRANSPILE_JOB
	}
	if err := validateJobParam(param); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate job param. Reason:%s", err.Error()))
		return nil, err
	}
	return j.NewJob(param, jc)
}

func (j *JobManager) NewJob(param *JobParam, jc *JobContext) (Job, error) {
	jd := NewJobData()
	jd.ID = param.JobID
	jd.Input = param.Circuit
	jd.Transpiler = param.Transpiler
	jd.JobType = param.JobType
	return j.NewJobFromJobData(jd, jc)
}

func (j *JobManager) NewJobFromJobDataWithValidation(jd *JobData, jc *JobContext) (Job, error) {
	if jd.JobType == "" { // default job type
		jd.JobType = TRANSPILE_JOB
	}
	p := &JobParam{
		JobID:      jd.ID,
		Circuit:    jd.Input,
		Transpiler: jd.Transpiler,
		JobType:    jd.JobType,
	}
	if err := validateJobParam(p); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate job data. Reason:%s", err.Error()))
		return nil, err
	}
	return j.NewJobFromJobData(jd, jc)
}

func (j *JobManager) NewJobFromJobData(jd *JobData, jc *JobContext) (Job, error) {
	if jd.JobType == "" { // default job type
		jd.JobType = TRANSPILE_JOB
	}
	zap.L().Debug(fmt.Sprintf("creating a job from job data. Job ID:%s, Job Type:%s", jd.ID, jd.JobType))
	for _, j := range j.acceptableJobs {
		zap.L().Debug(fmt.Sprintf("checking job type %s", j.JobType()))
		if j.JobType() == jd.JobType {
			// create a new job instance
			t := reflect.TypeOf(j)
			newInstance := reflect.New(t).Elem().Interface()
			job := newInstance.(Job).New(jd, jc)
			return job, nil
		}
	}
	return nil, fmt.Errorf("job type %s is not registered", jd.JobType)
}

func validateJobParam(p *JobParam) (err error) {
	err = nil
	if p.JobID == "" {
		return fmt.Errorf("jobID is empty")
	}
	if p.Circuit == nil || len(p.Circuit.Ops) == 0 {
		msg := "circuit has no operations"
		zap.L().Info(msg + fmt.Sprintf("/jobID:%s", p.JobID))
		return errors.New(msg)
	}
	qubits := make(map[Qubit]struct{})
	for _, op := range p.Circuit.Ops {
		for _, q := range op.Qubits {
			qubits[q] = struct{}{}
		}
	}
	maxQubits := GetSystemComponents().GetDeviceInfo().MaxQubits
	if len(qubits) > maxQubits {
		msg := fmt.Sprintf("qubits(%d) is over the limit(%d)", len(qubits), maxQubits)
		zap.L().Info(msg + fmt.Sprintf("/jobID:%s", p.JobID))
		return errors.New(msg)
	}

	container := GetSystemComponents().Container
	err = container.Invoke(
		func(t Transpiler) error {
			if p.Transpiler == nil {
				return nil // use no transpiler
			}
			raw, merr := jsonIter.Marshal(p.Transpiler)
			if merr != nil {
				return merr
			}
			if t.IsAcceptableTranspileConfig(string(raw)) {
				return nil
			}
			return fmt.Errorf("transpile config %s is not acceptable", string(raw))
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate transpile config/JobID:%s/reason:%s", p.JobID, err.Error()))
		return err
	}
	return
}

func NewJobManager(jobs ...Job) (*JobManager, error) {
	jm := &JobManager{}
	for _, job := range jobs {
		zap.L().Debug(fmt.Sprintf("registering job type %s", job.JobType()))
		err := jm.RegisterJob(job)
		if err != nil {
			return nil, err
		}
	}
	jobManager = jm
	return jm, nil
}

func GetJobManager() *JobManager {
	return jobManager
}

func SetFailureWithError(j Job, err error) (msg string) {
	jd := j.JobData()
	return SetFailureWithErrorToJobData(jd, err)
}

func SetFailureWithErrorToJobData(jd *JobData, err error) (msg string) {
	msg = err.Error()
	jd.Result.Message = msg
	jd.Status = FAILED
	jd.Ended = strfmt.DateTime(time.Now())
	return msg
}
