package scm

import "time"

// RevisionState is the snapshot recorded after a build: the timestamp
// of the most recent change the build consumed. It is the baseline for
// the next build's comparison.
type RevisionState struct {
	Time time.Time
}

// RevisionStateOf derives the revision state from a build's change set.
// It returns nil for a nil or empty set: an empty set carries no usable
// revision information, so there is nothing to compare against later.
func RevisionStateOf(set *ChangeSet) *RevisionState {
	latest, ok := set.LatestCommit()
	if !ok {
		return nil
	}
	return &RevisionState{Time: latest}
}
