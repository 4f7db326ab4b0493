package model

// Stage is one step of the document-processing pipeline.
type Stage string

const (
	StageMarkdownConversion   Stage = "markdown-conversion"
	StageMarkdownOptimization Stage = "markdown-optimization"
	StageChunking             Stage = "chunking"
	StageFactGeneration       Stage = "fact-generation"
	StageIngestion            Stage = "ingestion"
)

// AllStagesInPipelineOrder lists every pipeline stage in execution order.
var AllStagesInPipelineOrder = []Stage{
	StageMarkdownConversion,
	StageMarkdownOptimization,
	StageChunking,
	StageFactGeneration,
	StageIngestion,
}

// stageAliases maps legacy worker names onto canonical stage names.
var stageAliases = map[string]Stage{
	"converter":      StageMarkdownConversion,
	"optimizer":      StageMarkdownOptimization,
	"chunker":        StageChunking,
	"fact-generator": StageFactGeneration,
	"ingestor":       StageIngestion,
}

// ParseStage resolves a stage name, accepting canonical names and legacy
// aliases. The second return value is false for unknown names.
func ParseStage(name string) (Stage, bool) {
	for _, stage := range AllStagesInPipelineOrder {
		if string(stage) == name {
			return stage, true
		}
	}
	if stage, found := stageAliases[name]; found {
		return stage, true
	}
	return "", false
}

// StagePosition returns the index of the stage in pipeline order, or -1 for
// unknown stages.
func StagePosition(stage Stage) int {
	for i, s := range AllStagesInPipelineOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// SortStagesByPipelineOrder returns the given stages ordered as the pipeline
// executes them, dropping duplicates.
func SortStagesByPipelineOrder(stages []Stage) []Stage {
	requested := make(map[Stage]bool, len(stages))
	for _, stage := range stages {
		requested[stage] = true
	}

	var ordered []Stage
	for _, stage := range AllStagesInPipelineOrder {
		if requested[stage] {
			ordered = append(ordered, stage)
		}
	}
	return ordered
}

// EarliestStage returns the stage that comes first in pipeline order, or an
// empty stage when the slice is empty.
func EarliestStage(stages []Stage) Stage {
	ordered := SortStagesByPipelineOrder(stages)
	if len(ordered) == 0 {
		return ""
	}
	return ordered[0]
}
