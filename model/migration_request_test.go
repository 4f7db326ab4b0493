package model_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morag-io/morag-cloud/model"
)

func TestCreateMigrationRequestValid(t *testing.T) {
	for _, testCase := range []struct {
		description string
		request     *model.CreateMigrationRequest
		valid       bool
	}{
		{
			description: "valid copy request",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				SourceRealmID: "realm1",
				TargetRealmID: "realm2",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			},
			valid: true,
		},
		{
			description: "valid move request",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1", "document2"},
				SourceRealmID: "realm1",
				TargetRealmID: "realm2",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeMove, PreserveOriginal: true},
			},
			valid: true,
		},
		{
			description: "no documents",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{},
				SourceRealmID: "realm1",
				TargetRealmID: "realm2",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			},
			valid: false,
		},
		{
			description: "source and target realm are the same",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				SourceRealmID: "realm1",
				TargetRealmID: "realm1",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			},
			valid: false,
		},
		{
			description: "missing source realm",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				TargetRealmID: "realm2",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			},
			valid: false,
		},
		{
			description: "missing target realm",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				SourceRealmID: "realm1",
				Options:       &model.MigrationOptions{Mode: model.MigrationModeCopy},
			},
			valid: false,
		},
		{
			description: "missing options",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				SourceRealmID: "realm1",
				TargetRealmID: "realm2",
			},
			valid: false,
		},
		{
			description: "unsupported mode",
			request: &model.CreateMigrationRequest{
				DocumentIDs:   []string{"document1"},
				SourceRealmID: "realm1",
				TargetRealmID: "realm2",
				Options:       &model.MigrationOptions{Mode: "merge"},
			},
			valid: false,
		},
	} {
		t.Run(testCase.description, func(t *testing.T) {
			err := testCase.request.Validate()
			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateMigrationRequestNormalizesStageAliases(t *testing.T) {
	request := &model.CreateMigrationRequest{
		DocumentIDs:   []string{"document1"},
		SourceRealmID: "realm1",
		TargetRealmID: "realm2",
		Options: &model.MigrationOptions{
			Mode:            model.MigrationModeCopy,
			ReprocessStages: []model.Stage{"chunker", "ingestor"},
		},
	}

	err := request.Validate()
	require.NoError(t, err)
	assert.Equal(t, []model.Stage{model.StageChunking, model.StageIngestion}, request.Options.ReprocessStages)
}

func TestNewCreateMigrationRequestFromReader(t *testing.T) {
	request, err := model.NewCreateMigrationRequestFromReader(bytes.NewReader([]byte(
		`{"DocumentIDs":["doc1","doc2"],"SourceRealmID":"realm1","TargetRealmID":"realm2","Options":{"Mode":"copy","CopyStageFiles":true}}`,
	)))
	require.NoError(t, err)

	assert.Equal(t, []string{"doc1", "doc2"}, request.DocumentIDs)
	assert.Equal(t, "realm1", request.SourceRealmID)
	assert.Equal(t, "realm2", request.TargetRealmID)
	require.NotNil(t, request.Options)
	assert.Equal(t, model.MigrationModeCopy, request.Options.Mode)
	assert.True(t, request.Options.CopyStageFiles)
}
