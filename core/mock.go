package core

import (
	"fmt"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const validateErrorMessage string = "operation 0: qubit QB12 is not on the device"

type UnimplementedJob struct {
	jobData    *JobData
	jobContext *JobContext
}

func (j *UnimplementedJob) New(jd *JobData, jc *JobContext) Job {
	return &UnimplementedJob{
		jobData:    jd,
		jobContext: jc,
	}
}

func (j *UnimplementedJob) PreProcess() {
	return
}

func (j *UnimplementedJob) Process() {
	return
}

func (j *UnimplementedJob) PostProcess() {
	return
}

func (j *UnimplementedJob) IsFinished() bool {
	return j.JobData().Status == SUCCEEDED || j.JobData().Status == FAILED
}

func (j *UnimplementedJob) JobData() *JobData {
	return j.jobData
}

func (j *UnimplementedJob) JobType() string {
	return j.jobData.JobType
}

func (j *UnimplementedJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *UnimplementedJob) Clone() Job {
	cloned := &UnimplementedJob{
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

type UnimplementedDeviceManager struct{}

func (u *UnimplementedDeviceManager) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedDeviceManager) Validate(*Circuit) error {
	return nil
}

func (u *UnimplementedDeviceManager) GetDeviceInfo() *DeviceInfo {
	return &DeviceInfo{
		DeviceName:   "unimplementedDevice",
		ProviderName: "mock",
		Status:       Available,
		MaxQubits:    MockMaxQubits,
		Qubits:       []Qubit{0, 1, 2, 3},
		Edges:        [][2]Qubit{{0, 1}, {1, 2}, {2, 3}},
	}
}

type validateErrorDeviceForTest struct {
	UnimplementedDeviceManager
}

func (validateErrorDeviceForTest) Validate(*Circuit) error {
	return fmt.Errorf(validateErrorMessage)
}

type unimplementedDB struct{}

func (u *unimplementedDB) Setup(DBChan, *Conf) error {
	return nil
}
func (u *unimplementedDB) Insert(Job) error { return nil }
func (u *unimplementedDB) Get(JobID string) (Job, error) {
	return &TranspileJob{}, nil
}
func (u *unimplementedDB) Update(Job) error    { return nil }
func (u *unimplementedDB) Delete(string) error { return nil }

type successDBForTest struct {
	unimplementedDB
}

func (successDBForTest) Get(jobID string) (Job, error) {
	return &TranspileJob{
		jobData: &JobData{
			ID:     jobID,
			Status: RUNNING,
		},
	}, nil
}

type notFindDBForTest struct {
	unimplementedDB
}

func (notFindDBForTest) Get(jobID string) (Job, error) {
	return &TranspileJob{}, fmt.Errorf("failed to find %s", jobID)
}

type successTranspilerForTest struct{}

func (successTranspilerForTest) IsAcceptableTranspileConfig(string) bool {
	return true
}

func (successTranspilerForTest) Setup(*Conf) error { return nil }
func (successTranspilerForTest) GetHealth() error  { return nil }
func (successTranspilerForTest) Transpile(j Job) error {
	// TODO: fix this SRP violation
	j.JobData().Transpiled = j.JobData().Input.Clone()
	j.JobData().Status = SUCCEEDED
	return nil
}
func (successTranspilerForTest) TearDown() {}

type unimplementedScheduler struct{}

func (u *unimplementedScheduler) Setup(*Conf) error           { return nil }
func (u *unimplementedScheduler) Start() error                { return nil }
func (u *unimplementedScheduler) HandleJob(_ Job)             { return }
func (u *unimplementedScheduler) GetCurrentQueueSize() int    { return 0 }
func (u *unimplementedScheduler) GetProcessedCount() int      { return 0 }
func (u *unimplementedScheduler) IsOverRefillThreshold() bool { return false }

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDeviceManager{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() DBManager {
		db := &successDBForTest{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithValidateErrorContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &validateErrorDeviceForTest{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() DBManager {
		db := &successDBForTest{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithDBContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDeviceManager{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithScheduler(sc Scheduler) *SystemComponents {
	c := dig.New()
	c.Provide(func() DeviceManager { return &UnimplementedDeviceManager{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Transpiler { return &successTranspilerForTest{} })
	c.Provide(func() Scheduler { return sc })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000})
	return s
}
