package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version is what the process reports about itself. Set once at startup.
var Version string

const NoVersion = "no_version_info"

// SetVersion picks the reported version. A version injected through the
// build flag wins over the one in the config file.
func SetVersion(c *Conf, versionByBuildFlag string) {
	Version = resolveVersion(c, versionByBuildFlag)
	zap.L().Info(fmt.Sprintf("Version is %s", Version))
}

func resolveVersion(c *Conf, versionByBuildFlag string) string {
	switch {
	case versionByBuildFlag != "":
		return versionByBuildFlag
	case c.Version != "":
		return c.Version
	default:
		return NoVersion
	}
}
