package assignment

import "fmt"

// PolicyName identifies a coverage policy
type PolicyName string

const (
	PolicyAnyClaim      PolicyName = "ANY_CLAIM"
	PolicyExactQuantity PolicyName = "EXACT_QUANTITY"
)

// CoveragePolicy decides whether a single item counts as assigned given how
// many of its units have been claimed. Two interpretations are in use:
// any-claim-counts (the default) and exact-quantity-match.
type CoveragePolicy interface {
	// Name returns the policy identifier
	Name() PolicyName

	// Covered reports whether an item with the given total quantity counts as
	// assigned once claimed units have been recorded against it
	Covered(claimed, quantity int) bool
}

// AnyClaimPolicy counts an item as assigned as soon as anyone has claimed any
// of it. This is the default.
type AnyClaimPolicy struct{}

func (AnyClaimPolicy) Name() PolicyName { return PolicyAnyClaim }

func (AnyClaimPolicy) Covered(claimed, _ int) bool { return claimed > 0 }

// ExactQuantityPolicy counts an item as assigned only when every unit has been
// claimed.
type ExactQuantityPolicy struct{}

func (ExactQuantityPolicy) Name() PolicyName { return PolicyExactQuantity }

func (ExactQuantityPolicy) Covered(claimed, quantity int) bool { return claimed == quantity }

// PolicyFromString returns the policy for the given name. An empty name selects
// the default any-claim policy.
func PolicyFromString(name string) (CoveragePolicy, error) {
	switch PolicyName(name) {
	case PolicyAnyClaim, "":
		return AnyClaimPolicy{}, nil
	case PolicyExactQuantity:
		return ExactQuantityPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown coverage policy: %s", name)
	}
}
