package classify

// ChangeType is the aggregate classification of a batch of changes
type ChangeType string

const (
	// Breaking indicates a public contract is presumed altered
	Breaking ChangeType = "breaking"
	// NonBreaking indicates only additive changes were detected
	NonBreaking ChangeType = "non-breaking"
	// Internal indicates content-only changes
	Internal ChangeType = "internal"
	// UnknownChange indicates no changes were detected
	UnknownChange ChangeType = "unknown"
)

// ConfidenceLevel qualifies an aggregate classification
type ConfidenceLevel string

const (
	// HighConfidence for classifications backed by a structural marker
	HighConfidence ConfidenceLevel = "high"
	// MediumConfidence for content-only signals
	MediumConfidence ConfidenceLevel = "medium"
	// LowConfidence when nothing was detected
	LowConfidence ConfidenceLevel = "low"
)

// Aggregate derives the overall classification for a batch of changes.
//
// The rule is a coarse, order-independent OR over kind membership: any
// breaking-class signal anywhere in the batch marks the whole batch breaking.
// False positives are preferred over missed regressions.
func Aggregate(changes []Change) (ChangeType, ConfidenceLevel) {
	kinds := make(map[ChangeKind]bool, len(changes))
	for _, ch := range changes {
		kinds[ch.Kind] = true
	}

	switch {
	case kinds[KindSignature] || kinds[KindRemove] || kinds[KindRename]:
		return Breaking, HighConfidence
	case kinds[KindAdd]:
		return NonBreaking, HighConfidence
	case kinds[KindModify]:
		return Internal, MediumConfidence
	default:
		return UnknownChange, LowConfidence
	}
}
