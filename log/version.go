package log

import (
	"github.com/oqtopus-team/oqtopus-transpiler/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

// VersionLogTaskImpl periodically writes the running version to the log
// so long-lived deployments can be identified from their output alone.
type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	version := core.Version
	if version == "" {
		version = core.NoVersion
	}
	zap.L().Debug("transpiler version", zap.String("version", version))
}
