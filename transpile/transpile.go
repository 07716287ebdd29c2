package transpile

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/oqtopus-team/oqtopus-transpiler/common"
	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"github.com/oqtopus-team/oqtopus-transpiler/device"
	"github.com/oqtopus-team/oqtopus-transpiler/optimize"
)

const SETTING_KEY string = "transpiler"

type Setting struct {
	MaxIterations int `toml:"max_iterations"`
}

func NewSetting() Setting {
	return Setting{
		MaxIterations: *core.DEFAULT_TRANSPILE_CONFIG().MaxIterations,
	}
}

// NativeTranspiler rewrites job circuits into the native vocabulary of
// the device and shrinks them with the optimizer. It is an in-process
// component; there is no remote service behind it.
type NativeTranspiler struct {
	setting Setting

	devOnce sync.Once
	dev     *device.Device
	devErr  error
}

func (t *NativeTranspiler) Setup(conf *core.Conf) error {
	t.setting = NewSetting()
	if conf != nil && conf.MaxOptimizeLoops > 0 {
		t.setting.MaxIterations = conf.MaxOptimizeLoops
	}
	s, ok := core.GetComponentSetting(SETTING_KEY)
	if !ok {
		zap.L().Debug("transpiler setting is not found")
		return nil
	}
	zap.L().Debug(fmt.Sprintf("transpiler setting:%v", s))

	// TODO: fix this adhoc
	mapped, ok := s.(map[string]interface{})
	if !ok {
		return nil
	}
	if v, ok := mapped["max_iterations"].(int64); ok {
		t.setting.MaxIterations = int(v)
	}
	zap.L().Debug(fmt.Sprintf("transpiler is ready/max_iterations:%d", t.setting.MaxIterations))
	return nil
}

// IsAcceptableTranspileConfig accepts a JSON object whose keys all
// belong to the default transpile config.
func (t *NativeTranspiler) IsAcceptableTranspileConfig(raw string) bool {
	defaults := core.DefaultTranspileConfigJson()
	d := jx.DecodeStr(raw)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if _, ok := defaults[string(key)]; !ok {
			return fmt.Errorf("unknown transpile config key %q", key)
		}
		return d.Skip()
	})
	if err != nil {
		zap.L().Info(fmt.Sprintf("unacceptable transpile config:%s/reason:%s",
			common.PlainJsonString(raw), err))
		return false
	}
	return true
}

func (t *NativeTranspiler) GetHealth() error {
	return t.devErr
}

func (t *NativeTranspiler) Transpile(j core.Job) error {
	jd := j.JobData()
	dev, err := t.transpileDevice()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to prepare the device for a job(%s). Reason:%s",
			jd.ID, err))
		return err
	}

	mapped, err := MapCircuit(dev, jd.Input)
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to map a job(%s) onto %s. Reason:%s",
			jd.ID, dev.Info.DeviceName, err))
		return err
	}

	maxIterations, skip := t.effectiveConfig(jd.Transpiler)
	optimized := mapped
	loops := 0
	if !skip {
		optimized, loops = optimize.Optimize(mapped, maxIterations)
	}

	jd.Transpiled = optimized
	jd.Result.Stats = core.TranspileStats{
		InputOps:  len(jd.Input.Ops),
		OutputOps: len(optimized.Ops),
		Loops:     loops,
	}
	// TODO: fix this SRP violation
	jd.Status = core.SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
	zap.L().Debug(fmt.Sprintf("transpiled a job(%s)/ops:%d->%d/loops:%d",
		jd.ID, len(jd.Input.Ops), len(optimized.Ops), loops))
	return nil
}

func (t *NativeTranspiler) TearDown() {
}

// transpileDevice builds the immutable Device from the device manager's
// description on first use. Components only meet through the system
// container, which is not assembled yet while Setup runs.
func (t *NativeTranspiler) transpileDevice() (*device.Device, error) {
	t.devOnce.Do(func() {
		info := core.GetSystemComponents().GetDeviceInfo()
		if info == nil {
			t.devErr = fmt.Errorf("device information is not available")
			return
		}
		t.dev, t.devErr = device.New(info)
	})
	return t.dev, t.devErr
}

// effectiveConfig resolves the per-job config against the component
// setting. A nil MaxIterations falls back to the setting.
func (t *NativeTranspiler) effectiveConfig(tc *core.TranspileConfig) (maxIterations int, skip bool) {
	maxIterations = t.setting.MaxIterations
	if tc == nil {
		return maxIterations, false
	}
	if tc.MaxIterations != nil {
		maxIterations = *tc.MaxIterations
	}
	return maxIterations, tc.SkipOptimization
}
