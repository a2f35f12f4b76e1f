package model

// Artifact names a file the run may modify on the host.
type Artifact string

const (
	ArtifactUnit     Artifact = "unit"
	ArtifactBinary   Artifact = "binary"
	ArtifactTool     Artifact = "tool"
	ArtifactConfig   Artifact = "config"
	ArtifactDefaults Artifact = "defaults"
	ArtifactData     Artifact = "data"
)

// ChangeMarkers records, per artifact, whether this run altered its content.
// A marker is written at most once per run.
type ChangeMarkers struct {
	marks map[Artifact]bool
}

// Mark records the outcome for artifact. Later calls for the same artifact
// are ignored so the first observation wins.
func (c *ChangeMarkers) Mark(artifact Artifact, changed bool) {
	if c.marks == nil {
		c.marks = make(map[Artifact]bool)
	}
	if _, seen := c.marks[artifact]; seen {
		return
	}
	c.marks[artifact] = changed
}

// Changed reports whether artifact was altered.
func (c ChangeMarkers) Changed(artifact Artifact) bool {
	return c.marks[artifact]
}

// Recorded reports whether a marker exists for artifact.
func (c ChangeMarkers) Recorded(artifact Artifact) bool {
	_, ok := c.marks[artifact]
	return ok
}

// UnitChanged reports whether the init system must reload unit definitions.
func (c ChangeMarkers) UnitChanged() bool {
	return c.Changed(ArtifactUnit)
}

// RuntimeChanged reports whether anything the running daemon reads changed.
func (c ChangeMarkers) RuntimeChanged() bool {
	for _, a := range []Artifact{ArtifactBinary, ArtifactConfig, ArtifactDefaults, ArtifactData} {
		if c.Changed(a) {
			return true
		}
	}
	return false
}
