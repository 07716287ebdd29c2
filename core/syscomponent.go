package core

import (
	"fmt"
	"strconv"

	"github.com/go-faster/jx"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var (
	systemComponents           *SystemComponents
	defaultTranspileConfigJson map[string]jx.Raw
)

func init() {
	dtc := DEFAULT_TRANSPILE_CONFIG()
	dtcj := make(map[string]jx.Raw)
	dtcj["max_iterations"] = jx.Raw(strconv.Itoa(*dtc.MaxIterations))
	dtcj["skip_optimization"] = jx.Raw(strconv.FormatBool(dtc.SkipOptimization))
	defaultTranspileConfigJson = dtcj
}

func DefaultTranspileConfigJson() map[string]jx.Raw {
	return defaultTranspileConfigJson
}

type DBChan chan Job

type Channels struct {
	DBChan
	// when more channel is needed, add here
	// would use map[string]chan Job
}

func NewChannels() *Channels {
	return &Channels{
		DBChan: make(DBChan),
	}
}

func (c *Channels) Close() {
	close(c.DBChan)
}

func (c *Channels) Check() error {
	if c.DBChan == nil {
		return fmt.Errorf("DBChan is nil")
	}
	return nil
}

// DeviceInfo is the declarative description of the target device: its
// qubit ids and the explicit list of coupled pairs. Nothing is ever
// completed implicitly from this description.
type DeviceInfo struct {
	DeviceName   string       `json:"device_name"`
	ProviderName string       `json:"provider_name"`
	Status       DeviceStatus `json:"status"`
	MaxQubits    int          `json:"max_qubits"`
	Qubits       []Qubit      `json:"qubits"`
	Edges        [][2]Qubit   `json:"edges"`
	CalibratedAt string       `json:"calibrated_at"`
}

type DeviceStatus int

const (
	Available DeviceStatus = iota
	Unavailable
	QueuePaused
)

func (ds DeviceStatus) String() string {
	switch ds {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case QueuePaused:
		return "QueuePaused"
	default:
		return "Unknown"
	}
}

func DEFAULT_TRANSPILE_CONFIG() *TranspileConfig {
	iterations := 5
	return &TranspileConfig{
		MaxIterations: &iterations,
		UseDefault:    true,
	}
}

type Transpiler interface {
	IsAcceptableTranspileConfig(string) bool
	Setup(*Conf) error
	GetHealth() error
	Transpile(Job) error
	TearDown()
}

type DeviceManager interface {
	Setup(*Conf) error
	Validate(*Circuit) error
	GetDeviceInfo() *DeviceInfo
}

type Scheduler interface {
	Setup(*Conf) error
	Start() error
	HandleJob(Job)
	// Queue Data Access
	GetCurrentQueueSize() int
	GetProcessedCount() int
	IsOverRefillThreshold() bool
}

type DBManager interface {
	Setup(DBChan, *Conf) error
	// TODO: make Start() for consistency
	Insert(Job) error
	Get(string) (Job, error)
	Update(Job) error
	Delete(string) error
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	dbChan := s.DBChan

	zap.L().Debug("Setting up device manager")
	var err error
	err = s.Invoke(
		func(d DeviceManager) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up transpiler")
	err = s.Invoke(
		func(t Transpiler) error {
			return t.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up scheduler")
	err = s.Invoke(
		func(s Scheduler) error {
			return s.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up DB")
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(dbChan, conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	_ = s.Invoke(
		func(t Transpiler) {
			t.TearDown()
		})
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(s Scheduler) error {
			return s.Start()
		})
}

func (s *SystemComponents) GetDeviceInfo() *DeviceInfo {
	var deviceInfo *DeviceInfo
	s.Invoke(
		func(d DeviceManager) error {
			deviceInfo = d.GetDeviceInfo()
			return nil
		})
	return deviceInfo
}

func (s *SystemComponents) ValidateOnDevice(c *Circuit) error {
	var verr error
	err := s.Invoke(
		func(d DeviceManager) error {
			verr = d.Validate(c)
			return nil
		})
	if err != nil {
		return err
	}
	return verr
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) GetProcessedJobCount() int {
	var count int
	s.Invoke(
		func(sc Scheduler) {
			count = sc.GetProcessedCount()
		})
	return count
}

func (s *SystemComponents) IsQueueOverRefillThreshold() bool {
	var over bool
	s.Invoke(
		func(sc Scheduler) {
			over = sc.IsOverRefillThreshold()
		})
	return over
}
