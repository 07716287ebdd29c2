package device

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/oqtopus-team/oqtopus-transpiler/common"
	"github.com/oqtopus-team/oqtopus-transpiler/core"
)

// Setting is the declarative device description loaded from TOML. It
// carries no behavior; a Device is built from it once at setup.
type Setting struct {
	DeviceName   string  `toml:"device_name"`
	ProviderName string  `toml:"provider_name"`
	Qubits       []int   `toml:"qubits"`
	Edges        [][]int `toml:"edges"`
}

func NewSetting() *Setting {
	return &Setting{
		DeviceName:   "linear_3",
		ProviderName: "oqtopus",
		Qubits:       []int{0, 1, 2},
		Edges:        [][]int{{0, 1}, {1, 2}},
	}
}

// LinearSetting describes a chain of n qubits with nearest-neighbor
// coupling, used as the dummy device.
func LinearSetting(n int) *Setting {
	s := &Setting{
		DeviceName:   fmt.Sprintf("dummy_linear_%d", n),
		ProviderName: "oqtopus",
	}
	for i := 0; i < n; i++ {
		s.Qubits = append(s.Qubits, i)
	}
	for i := 0; i+1 < n; i++ {
		s.Edges = append(s.Edges, []int{i, i + 1})
	}
	return s
}

func LoadSetting(path string) (*Setting, error) {
	blob, assetErr := common.ReadFile(path)
	s := NewSetting()
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return s, nil
	}
	if _, err := toml.Decode(blob, s); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &Setting{}, err
	}
	return s, nil
}

func (s *Setting) ToDeviceInfo() (*core.DeviceInfo, error) {
	info := &core.DeviceInfo{
		DeviceName:   s.DeviceName,
		ProviderName: s.ProviderName,
		Status:       core.Available,
		MaxQubits:    len(s.Qubits),
	}
	for _, q := range s.Qubits {
		info.Qubits = append(info.Qubits, core.Qubit(q))
	}
	for _, e := range s.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("edge %v must have exactly 2 endpoints", e)
		}
		info.Edges = append(info.Edges, [2]core.Qubit{core.Qubit(e[0]), core.Qubit(e[1])})
	}
	return info, nil
}

// Device is the immutable target description shared by every transpile
// worker: the declarative info plus the coupling graph built from it.
type Device struct {
	Info     *core.DeviceInfo
	Topology *Topology
}

func New(info *core.DeviceInfo) (*Device, error) {
	t, err := NewTopology(info.Qubits, info.Edges)
	if err != nil {
		return nil, fmt.Errorf("device %s has an invalid topology: %w", info.DeviceName, err)
	}
	return &Device{Info: info, Topology: t}, nil
}
