package core

type NonSecretConf struct {
	DevMode              bool
	DisableStdoutLog     bool
	EnableFileLog        bool
	LogDir               string
	LogLevel             string
	LogRotationMaxDays   int
	UseDummyDevice       bool
	DummyDeviceQubits    int
	DeviceSettingPath    string
	QueueMaxSize         int
	QueueRefillThreshold int
	MaxOptimizeLoops     int
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:              c.DevMode,
		DisableStdoutLog:     c.DisableStdoutLog,
		EnableFileLog:        c.EnableFileLog,
		LogDir:               c.LogDir,
		LogLevel:             c.LogLevel,
		LogRotationMaxDays:   c.LogRotationMaxDays,
		UseDummyDevice:       c.UseDummyDevice,
		DummyDeviceQubits:    c.DummyDeviceQubits,
		DeviceSettingPath:    c.DeviceSettingPath,
		QueueMaxSize:         c.QueueMaxSize,
		QueueRefillThreshold: c.QueueRefillThreshold,
		MaxOptimizeLoops:     c.MaxOptimizeLoops,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
