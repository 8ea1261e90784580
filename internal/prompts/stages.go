// Package prompts holds the prompt library for PitchCraft generation stages.
// Each stage pairs tunable instructions with a fixed output format.
// Instructions may be overridden from a YAML file.
package prompts

import "slices"

// Stage identifies one generation call shape.
type Stage string

// Generation stages. The six narrative stages share their names with the
// narrative sections they produce.
const (
	StageIntroduction     Stage = "introduction"
	StageProblemStatement Stage = "problem_statement"
	StageSolutionOverview Stage = "solution_overview"
	StageBenefits         Stage = "benefits"
	StageSocialProof      Stage = "social_proof"
	StageCallToAction     Stage = "call_to_action"
	StageRebuttal         Stage = "rebuttal"
)

var stages = []Stage{
	StageIntroduction,
	StageProblemStatement,
	StageSolutionOverview,
	StageBenefits,
	StageSocialProof,
	StageCallToAction,
	StageRebuttal,
}

// Stages returns the list of valid generation stages.
func Stages() []Stage {
	return stages
}

// ParseStage validates a string as a known generation stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
