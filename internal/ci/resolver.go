package ci

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Resolution is the build context an analysis run is recorded under.
type Resolution struct {
	Kind      CIKind
	JobName   string
	RunNumber int
	Revision  string
	Workspace string
	Hydrated  bool
}

// ResolveFromEnvironment determines the CI kind and collects the build context
// from the process environment. Explicit values win over detected ones;
// conflicts are logged. Outside of a CI environment only the explicit values
// are returned.
func ResolveFromEnvironment(log hclog.Logger, explicit Resolution) Resolution {
	return resolveWithLookup(log, explicit, nil)
}

func resolveWithLookup(log hclog.Logger, explicit Resolution, lookup LookupFunc) Resolution {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	result := explicit

	kind := detectCIKindWithLookup(lookup)
	if kind == CIUnknown {
		log.Debug("no CI environment detected")
		return result
	}

	env, err := getCIDefaultEnvVars(kind, lookup)
	if err != nil {
		log.Debug("unable to hydrate from ci environment", "kind", kind.String(), "error", err)
		return result
	}

	result.Kind = env.Kind
	result.Hydrated = true
	log.Debug("detected CI environment", "kind", env.Kind.String())

	result.JobName = pick(log, "job", explicit.JobName, env.JobName)
	result.Revision = pick(log, "revision", explicit.Revision, env.CommitHash)
	result.Workspace = pick(log, "workspace", explicit.Workspace, env.Workspace)
	if result.RunNumber == 0 {
		result.RunNumber = env.RunNumber
	}

	return result
}

func pick(log hclog.Logger, name, explicit, detected string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		if detected != "" {
			log.Debug("hydrated value from CI environment", name, detected)
		}
		return detected
	}
	if detected != "" && detected != explicit {
		log.Warn("provided value differs from CI environment", "name", name, "detected", detected, "provided", explicit)
	}
	return explicit
}
