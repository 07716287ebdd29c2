package core

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/oklog/run"
	"github.com/oqtopus-team/oqtopus-transpiler/common"
	"go.uber.org/zap"
)

var runContext *RunContext

const (
	PERIODIC_TASKS       = "periodic_tasks"
	INTERNAL_JOB_SERVERS = "internal_job_servers"
)

type PeriodicTaskImplMap map[string]PeriodicTaskImpl
type InternalJobServerImplMap map[string]InternalJobServerImpl

type PeriodicTaskMap map[string]*PeriodicTask
type InternalJobServerMap map[string]*InternalJobServer

// ImplMaps binds the runner names of the settings file to their
// implementations. Every runner listed under [run_group] must have an
// entry here.
type ImplMaps struct {
	PeriodicTaskImplMap      PeriodicTaskImplMap
	InternalJobServerImplMap InternalJobServerImplMap
}

// RunnerImpl is the lifecycle shared by all run-group members.
// SetParams receives the decoded params table of the runner, or nil
// when the settings file has none.
type RunnerImpl interface {
	SetParams(interface{}) error
	Setup() error
}

type RunContext struct {
	*run.Group
	context.Context

	RunGroupMaps *RunGroupMaps
}

type RunGroupMaps struct {
	PeriodicTasks      PeriodicTaskMap
	InternalJobServers InternalJobServerMap
}

func NewRunContext() *RunContext {
	return &RunContext{
		Group:   &run.Group{},
		Context: context.Background(),
		RunGroupMaps: &RunGroupMaps{
			PeriodicTasks:      make(PeriodicTaskMap),
			InternalJobServers: make(InternalJobServerMap),
		},
	}
}

// runGroupTables is the [run_group] part of the settings file. Runner
// bodies are kept as TOML primitives so that each one is decoded into a
// runner already holding its implementation.
type runGroupTables struct {
	RunGroup map[string]map[string]toml.Primitive `toml:"run_group"`
}

// NewRunContextWithSettingPath builds a RunContext from the [run_group]
// table of the settings file, wires every configured runner to its
// implementation from im and registers it with the run group. Runners
// are registered only; nothing starts before Run.
func NewRunContextWithSettingPath(settingsPath string, im *ImplMaps) (*RunContext, error) {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read settings file/reason:%s", err))
		return nil, err
	}
	tables := runGroupTables{}
	md, err := toml.Decode(tomlString, &tables)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to decode settings file. Reason:%s", err))
		return nil, err
	}
	rc := NewRunContext()
	for group, runners := range tables.RunGroup {
		switch group {
		case PERIODIC_TASKS:
			for name, body := range runners {
				task, err := decodePeriodicTask(md, body, name, im.PeriodicTaskImplMap)
				if err != nil {
					return nil, err
				}
				rc.RunGroupMaps.PeriodicTasks[name] = task
			}
		case INTERNAL_JOB_SERVERS:
			for name, body := range runners {
				server, err := decodeInternalJobServer(md, body, name, im.InternalJobServerImplMap)
				if err != nil {
					return nil, err
				}
				rc.RunGroupMaps.InternalJobServers[name] = server
			}
		default:
			msg := fmt.Sprintf("Unknown run group type. Group:%s", group)
			zap.L().Error(msg)
			return nil, fmt.Errorf(msg)
		}
	}
	for name, task := range rc.RunGroupMaps.PeriodicTasks {
		if err := initRunner(task, task.Params, name); err != nil {
			return nil, err
		}
		if err := rc.AddPeriodicTask(task, name); err != nil {
			return nil, err
		}
	}
	for name, server := range rc.RunGroupMaps.InternalJobServers {
		if err := initRunner(server, server.Params, name); err != nil {
			return nil, err
		}
		if err := rc.AddInternalJobServer(server, name); err != nil {
			return nil, err
		}
	}
	zap.L().Info("Successfully initialized RunContext.", zap.Any("RunGroupMaps", rc.RunGroupMaps))
	return rc, nil
}

func decodePeriodicTask(md toml.MetaData, body toml.Primitive,
	name string, implMap PeriodicTaskImplMap) (*PeriodicTask, error) {
	impl, ok := implMap[name]
	if !ok {
		msg := fmt.Sprintf("failed to find %s implementation from RunnerMap %v", name, implMap)
		zap.L().Error(msg)
		return nil, fmt.Errorf(msg)
	}
	task := &PeriodicTask{PeriodicTaskImpl: impl}
	if err := md.PrimitiveDecode(body, task); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode settings of %s/reason:%s", name, err.Error()))
		return nil, err
	}
	return task, nil
}

func decodeInternalJobServer(md toml.MetaData, body toml.Primitive,
	name string, implMap InternalJobServerImplMap) (*InternalJobServer, error) {
	impl, ok := implMap[name]
	if !ok {
		msg := fmt.Sprintf("failed to find %s implementation from RunnerMap %v", name, implMap)
		zap.L().Error(msg)
		return nil, fmt.Errorf(msg)
	}
	server := &InternalJobServer{InternalJobServerImpl: impl}
	if err := md.PrimitiveDecode(body, server); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode settings of %s/reason:%s", name, err.Error()))
		return nil, err
	}
	return server, nil
}

func initRunner(impl RunnerImpl, params interface{}, name string) error {
	if err := impl.SetParams(params); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set parameters to %s/reason:%s", name, err.Error()))
		return err
	}
	if err := impl.Setup(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup %s/reason:%s", name, err.Error()))
		return err
	}
	return nil
}

func GetRunContext() *RunContext {
	return runContext
}

func SetRunContext(rc *RunContext) {
	runContext = rc
}

// PeriodicTask runs its implementation's Task every Period under the
// run group.
type PeriodicTask struct {
	Period time.Duration `toml:"period"`
	Params interface{}   `toml:"params,omitempty"`
	PeriodicTaskImpl
}

type PeriodicTaskImpl interface {
	RunnerImpl
	RequirePeriodUpdate() (ok bool, duration time.Duration)
	Task()
	Cleanup()
}

// DefaultTaskImpl is a no-op base to embed in tasks that only need
// Task.
type DefaultTaskImpl struct{}

func (v *DefaultTaskImpl) Setup() error {
	return nil
}

func (v *DefaultTaskImpl) SetParams(p interface{}) error {
	return nil
}

func (v *DefaultTaskImpl) RequirePeriodUpdate() (bool, time.Duration) {
	return false, 0
}

func (v *DefaultTaskImpl) Task() {}

func (v *DefaultTaskImpl) Cleanup() {}

func (rc *RunContext) AddPeriodicTask(t *PeriodicTask, taskName string) error {
	ctx, cancel := context.WithCancel(rc.Context)
	lastPeriod := t.Period
	rc.Group.Add(
		func() error {
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s] start/period:%v", taskName, t.Period))
			ticker := time.NewTicker(t.Period)
			t.PeriodicTaskImpl.Task()
			for {
				select {
				case <-ctx.Done():
					ticker.Stop()
					t.PeriodicTaskImpl.Cleanup()
					zap.L().Info(fmt.Sprintf("[PeriodicTask/%s] cleaned up", taskName))
					return ctx.Err()
				case <-ticker.C:
					t.PeriodicTaskImpl.Task()
					if ok, newPeriod := t.RequirePeriodUpdate(); ok && newPeriod != lastPeriod {
						zap.L().Info(fmt.Sprintf("[PeriodicTask/%s] resetting period from %v to %v",
							taskName, lastPeriod, newPeriod))
						ticker.Reset(newPeriod)
						lastPeriod = newPeriod
					}
				}
			}
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s] cancelling", taskName))
			cancel()
		},
	)
	return nil
}

// InternalJobServer accepts jobs from inside the process and hands them
// to its implementation.
type InternalJobServer struct {
	Params interface{} `toml:"params,omitempty"`
	InternalJobServerImpl
}

type InternalJobServerImpl interface {
	RunnerImpl
	Start() error
	Cleanup()
	Handle(Job) error
}

func (rc *RunContext) AddInternalJobServer(s *InternalJobServer, serverName string) error {
	ctx, cancel := context.WithCancel(rc.Context)
	rc.Group.Add(
		func() error {
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s] start", serverName))
			if err := s.Start(); err != nil {
				zap.L().Error(fmt.Sprintf("[InternalJobServer/%s] failed to start/reason:%s",
					serverName, err))
				return err
			}
			<-ctx.Done()
			s.Cleanup()
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s] cleaned up", serverName))
			return nil
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s] cancelling", serverName))
			cancel()
		},
	)
	return nil
}
