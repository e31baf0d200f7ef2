// Package hosting uploads a built artifact directory to S3 buckets.
package hosting

import (
	"errors"
	"fmt"
	"sort"
)

// AllTargets selects every configured target.
const AllTargets = "all"

// ErrUnknownTarget is returned when a deploy names a target that is not
// configured.
var ErrUnknownTarget = errors.New("unknown hosting target")

// Target is one S3 bucket an artifact can be deployed to.
type Target struct {
	Name    string
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

// Select resolves a deploy argument to targets. "all" returns every target
// in name order; any other value must name a configured target.
func Select(targets map[string]Target, name string) ([]Target, error) {
	if name == AllTargets {
		if len(targets) == 0 {
			return nil, fmt.Errorf("%w: no hosting targets configured", ErrUnknownTarget)
		}
		names := make([]string, 0, len(targets))
		for n := range targets {
			names = append(names, n)
		}
		sort.Strings(names)

		out := make([]Target, 0, len(names))
		for _, n := range names {
			out = append(out, targets[n])
		}
		return out, nil
	}

	t, ok := targets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTarget, name)
	}
	return []Target{t}, nil
}
