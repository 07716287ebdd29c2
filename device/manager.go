package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/oqtopus-team/oqtopus-transpiler/core"
)

// Manager owns the process-wide Device. Setup builds it once from the
// configured setting file (or the dummy chain); afterwards the Device
// is shared read-only.
type Manager struct {
	device *Device
}

func (m *Manager) Setup(conf *core.Conf) error {
	var s *Setting
	if conf.UseDummyDevice {
		s = LinearSetting(conf.DummyDeviceQubits)
		zap.L().Info(fmt.Sprintf("using a dummy linear device with %d qubits", conf.DummyDeviceQubits))
	} else {
		var err error
		s, err = LoadSetting(conf.DeviceSettingPath)
		if err != nil {
			return err
		}
	}
	info, err := s.ToDeviceInfo()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build device info from setting/reason:%s", err))
		return err
	}
	d, err := New(info)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build device/reason:%s", err))
		return err
	}
	m.device = d
	zap.L().Info(fmt.Sprintf("device %s is ready/qubits:%d/edges:%d",
		info.DeviceName, len(info.Qubits), len(info.Edges)))
	return nil
}

func (m *Manager) Validate(c *core.Circuit) error {
	return m.device.ValidateCircuit(c)
}

func (m *Manager) GetDeviceInfo() *core.DeviceInfo {
	return m.device.Info
}

// GetDevice exposes the built Device to components that need the
// topology itself, not just the declarative info.
func (m *Manager) GetDevice() *Device {
	return m.device
}
