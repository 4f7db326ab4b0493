package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morag-io/morag-cloud/model"
)

func TestParseStage(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		expected model.Stage
		known    bool
	}{
		{"markdown-conversion", model.StageMarkdownConversion, true},
		{"chunking", model.StageChunking, true},
		{"ingestion", model.StageIngestion, true},
		{"chunker", model.StageChunking, true},
		{"ingestor", model.StageIngestion, true},
		{"fact-generator", model.StageFactGeneration, true},
		{"transmogrifier", "", false},
		{"", "", false},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			stage, known := model.ParseStage(testCase.name)
			assert.Equal(t, testCase.known, known)
			assert.Equal(t, testCase.expected, stage)
		})
	}
}

func TestSortStagesByPipelineOrder(t *testing.T) {
	sorted := model.SortStagesByPipelineOrder([]model.Stage{
		model.StageIngestion,
		model.StageChunking,
		model.StageMarkdownConversion,
		model.StageChunking,
	})

	assert.Equal(t, []model.Stage{
		model.StageMarkdownConversion,
		model.StageChunking,
		model.StageIngestion,
	}, sorted)
}

func TestEarliestStage(t *testing.T) {
	assert.Equal(t, model.StageChunking, model.EarliestStage([]model.Stage{
		model.StageIngestion,
		model.StageChunking,
		model.StageFactGeneration,
	}))
	assert.Equal(t, model.Stage(""), model.EarliestStage(nil))
}
