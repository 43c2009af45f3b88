package envship

import (
	"fmt"

	"github.com/bft-labs/envship/pkg/buffer"
	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/dispatch"
	"github.com/bft-labs/envship/pkg/lifecycle"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/outcome"
	"github.com/bft-labs/envship/pkg/ratelimit"
	"github.com/bft-labs/envship/pkg/transport"
)

// Version is the version of the envship client.
const Version = "1.0.0"

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"delivery":  {delivery.Version, delivery.MinCompatibleVersion},
		"ratelimit": {ratelimit.Version, ratelimit.MinCompatibleVersion},
		"buffer":    {buffer.Version, buffer.MinCompatibleVersion},
		"transport": {transport.Version, transport.MinCompatibleVersion},
		"dispatch":  {dispatch.Version, dispatch.MinCompatibleVersion},
		"outcome":   {outcome.Version, outcome.MinCompatibleVersion},
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	out := make(map[string]string)
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	for name, m := range modules() {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
