package service

import (
	"go-stock-newsroom/internal/review/config"
	"go-stock-newsroom/pkg/utils"
)

// Capability names one review gate permission.
type Capability string

const (
	CapabilityReview  Capability = "review"
	CapabilityPublish Capability = "publish"
)

// CapabilityChecker decides whether a reviewer holds a capability. It is an
// explicit dependency of the review service, not something read from ambient
// request state.
type CapabilityChecker func(reviewer string, capability Capability) bool

// NewConfigCapabilityChecker builds a checker from the configured allow
// lists. An empty list grants the capability to everyone.
func NewConfigCapabilityChecker(cfg config.Review) CapabilityChecker {
	return func(reviewer string, capability Capability) bool {
		var allowed []string
		switch capability {
		case CapabilityReview:
			allowed = cfg.Reviewers
		case CapabilityPublish:
			allowed = cfg.Publishers
		default:
			return false
		}
		if len(allowed) == 0 {
			return true
		}
		return utils.ContainsString(allowed, reviewer)
	}
}
