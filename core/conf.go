package core

type Conf struct {
	Version              string `long:"version" description:"version of the transpiler" env:"OQTOPUS_TRANSPILER_VERSION"`
	DevMode              bool   `long:"dev-mode" description:"run in dev mode" env:"OQTOPUS_TRANSPILER_DEV_MODE"`
	DisableStdoutLog     bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"OQTOPUS_TRANSPILER_DISABLE_STDOUT_LOG"`
	EnableFileLog        bool   `long:"enable-file-log" description:"enable log in file" env:"OQTOPUS_TRANSPILER_ENABLE_FILE_LOG"`
	LogDir               string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"OQTOPUS_TRANSPILER_LOG_DIR"`
	LogLevel             string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"OQTOPUS_TRANSPILER_LOG_LEVEL"`
	LogRotationMaxDays   int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"OQTOPUS_TRANSPILER_LOG_ROTATION_MAX_DAYS"`
	UseDummyDevice       bool   `long:"enable-dummy-device" description:"use a dummy linear device and ignore the device setting file" env:"OQTOPUS_TRANSPILER_USE_DUMMY_DEVICE"`
	DummyDeviceQubits    int    `long:"dummy-device-qubits" description:"qubit count of the dummy device" default:"5" env:"OQTOPUS_TRANSPILER_DUMMY_DEVICE_QUBITS"`
	DeviceSettingPath    string `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"OQTOPUS_TRANSPILER_DEVICE_SETTING_PATH"`
	QueueMaxSize         int    `long:"queue-max-size" description:"queue max size" default:"100" env:"OQTOPUS_TRANSPILER_QUEUE_MAX_SIZE"`
	QueueRefillThreshold int    `long:"queue-refill-threshold" description:"queue refill threshold" default:"10" env:"OQTOPUS_TRANSPILER_QUEUE_REFILL_THRESHOLD"`
	MaxOptimizeLoops     int    `long:"max-optimize-loops" description:"cap of the optimization loop" default:"5" env:"OQTOPUS_TRANSPILER_MAX_OPTIMIZE_LOOPS"`
	SettingPath          string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"OQTOPUS_TRANSPILER_SETTING_PATH"`
}
