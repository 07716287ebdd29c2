package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/device"
	"github.com/oqtopus-team/oqtopus-transpiler/log"
	"github.com/oqtopus-team/oqtopus-transpiler/scheduler"
	"github.com/oqtopus-team/oqtopus-transpiler/transpile"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var versionByBuildFlag string
var parser *flags.Parser
var transpiler *Transpiler

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	transpiler = &Transpiler{}
	setParser(transpiler)
}

type Transpiler struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	DBManager  string `long:"db" description:"db" default:"memory" choice:"memory" env:"OQTOPUS_TRANSPILER_DB_MANAGER_TYPE"`
	Transpiler string `long:"transpiler" description:"transpiler-type" default:"native" choice:"native" env:"OQTOPUS_TRANSPILER_TRANSPILER_TYPE"`
	Scheduler  string `long:"scheduler" description:"scheduler-type" default:"normal" env:"OQTOPUS_TRANSPILER_SCHEDULER_TYPE"`
}

func setParser(t *Transpiler) {
	parser = flags.NewParser(t, flags.Default)
	parser.ShortDescription = "oqtopus transpiler"
	parser.LongDescription = "the hardware-aware circuit transpiler of the OQTOPUS cloud quantum computation system."
	parser.AddCommand("server", "start server", "start the job server to accept and transpile circuits", newServerCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (t *Transpiler) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() core.DeviceManager { return &device.Manager{} })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.Transpiler, error) {
		switch t.DIContainerParameters.Transpiler {
		case "native":
			return &transpile.NativeTranspiler{}, nil
		default:
			return &transpile.NativeTranspiler{}, fmt.Errorf("%s is an unknown Transpiler", t.DIContainerParameters.Transpiler)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.Scheduler { return &scheduler.NormalScheduler{} })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.DBManager, error) {
		switch t.DIContainerParameters.DBManager {
		case "memory":
			return &core.MemoryDB{}, nil
		default:
			return &core.MemoryDB{}, fmt.Errorf("%s is an unknown DB", t.DIContainerParameters.DBManager)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func (t *Transpiler) startCore(conf *core.Conf) error {
	core.NewJobManager(
		&core.TranspileJob{},
		&core.ValidateJob{},
	)
	err := core.GetSystemComponents().StartContainer()
	if err != nil {
		return err
	}
	core.SetInfo(conf)
	return nil
}

func main() {
	parse()
}

type serverCmd struct{}

func newServerCmd() *serverCmd {
	return &serverCmd{}
}

func (c *serverCmd) Execute(args []string) error {
	logger := log.SetupLogger(transpiler.Conf)
	defer logger.Sync()

	// settings without RunGroups
	// TODO : unify run-group settings
	core.ResetSetting()
	registerSetting()
	zap.L().Debug("Registered setting")
	if err := core.ParseSettingFromPath(transpiler.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}

	s := setupSystemComponents(transpiler.Conf)
	defer s.TearDown()

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
		InternalJobServerImplMap: core.InternalJobServerImplMap{
			scheduler.ServerName: &scheduler.Server{},
		},
	}
	rc, err := core.NewRunContextWithSettingPath(transpiler.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	if err := transpiler.startCore(transpiler.Conf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to start core. Reason:%s", err))
		return err
	}

	zap.L().Debug("Setting up run-group")
	if err := c.setupRunGroup(rc); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setup run group. Reason:%s", err))
		return err
	}

	if err := rc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}

	return nil
}

func (c *serverCmd) setupRunGroup(rc *core.RunContext) error {
	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	core.SetRunContext(rc)
	return nil
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", transpiler.DIContainerParameters))

	container, err := transpiler.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}

func registerSetting() {
	core.RegisterSetting(transpile.SETTING_KEY, transpile.NewSetting())
}
