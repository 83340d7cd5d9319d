// Package rules decides which product category changes are allowed.
// Everything here is pure: callers pass a snapshot read inside their
// transaction and act on the returned decision.
package rules

import "github.com/tair/omnichannel-catalog/internal/catalog/domain"

const (
	ReasonSimpleToBundledInUse = "Cannot convert to BUNDLED while being used as a component in other bundles. Remove from all bundles first."
	ReasonSimpleToMergedInUse  = "Cannot convert to MERGED while being used as a component in bundles. Remove from all bundles first."
	ReasonBundleHasComponents  = "Cannot convert to SIMPLE while bundle components are attached. Remove all bundle components first."
	ReasonBundledToMerged      = "BUNDLED cannot be merged."
	ReasonMergedToBundled      = "MERGED cannot become a bundle."
	ReasonMergedHasChannels    = "Cannot convert to SIMPLE while linked to more than one active channel. Unmerge from all channels first."
	ReasonNotPermitted         = "Conversion not permitted."
)

// Decision is the outcome of evaluating one transition
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func reject(reason string) Decision { return Decision{Reason: reason} }

// Evaluate decides whether a product described by s may become target.
// Pairs not listed below, including every change back to CONFIGURABLE and
// a change to the current category, are rejected.
func Evaluate(s domain.ConversionSnapshot, target domain.Category) Decision {
	switch s.Category {
	case domain.CategoryConfigurable:
		switch target {
		case domain.CategorySimple, domain.CategoryBundled, domain.CategoryMerged:
			return allow()
		}

	case domain.CategorySimple:
		switch target {
		case domain.CategoryBundled:
			if s.ComponentUsageCount > 0 {
				return reject(ReasonSimpleToBundledInUse)
			}
			return allow()
		case domain.CategoryMerged:
			if s.ComponentUsageCount > 0 {
				return reject(ReasonSimpleToMergedInUse)
			}
			return allow()
		}

	case domain.CategoryBundled:
		switch target {
		case domain.CategorySimple:
			if s.ComponentCount > 0 {
				return reject(ReasonBundleHasComponents)
			}
			return allow()
		case domain.CategoryMerged:
			return reject(ReasonBundledToMerged)
		}

	case domain.CategoryMerged:
		switch target {
		case domain.CategoryBundled:
			return reject(ReasonMergedToBundled)
		case domain.CategorySimple:
			if s.ActivePlatformLinks > 1 {
				return reject(ReasonMergedHasChannels)
			}
			return allow()
		}
	}

	return reject(ReasonNotPermitted)
}

// AvailableConversions lists the categories s may move to right now, in
// declaration order.
func AvailableConversions(s domain.ConversionSnapshot) []domain.Category {
	out := make([]domain.Category, 0, 3)
	for _, c := range domain.AllCategories() {
		if c == s.Category {
			continue
		}
		if Evaluate(s, c).Allowed {
			out = append(out, c)
		}
	}
	return out
}
