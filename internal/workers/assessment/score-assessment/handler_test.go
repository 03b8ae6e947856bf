// internal/workers/assessment/score-assessment/handler_test.go
package scoreassessment

import (
	"context"
	"testing"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/logger"
	"funnel-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func fullAnswerSet(value int) models.AnswerSet {
	var set models.AnswerSet
	for questionID := range models.QuestionCatalog {
		set = append(set, models.Answer{QuestionID: questionID, Value: value})
	}
	return set
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		answers      models.AnswerSet
		wantOverall  int
		wantCategory map[string]int
	}{
		{
			name:        "all fives maxes out",
			answers:     fullAnswerSet(5),
			wantOverall: 100,
		},
		{
			name:        "all ones floors at 25",
			answers:     fullAnswerSet(1),
			wantOverall: 25,
		},
		{
			name: "missing answers score neutral",
			answers: models.AnswerSet{
				{QuestionID: "q_content_volume", Value: 3},
			},
			wantOverall: 75,
		},
	}

	handler := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				AssessmentID: "asmt-1",
				Answers:      tt.answers,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOverall, output.OverallScore)
			assert.Equal(t, "asmt-1", output.AssessmentID)
			assert.Len(t, output.CategoryScores, 4)
			for category, score := range output.CategoryScores {
				assert.GreaterOrEqual(t, score, 0, category)
				assert.LessOrEqual(t, score, 100, category)
			}
		})
	}
}

func TestHandler_Execute_Deterministic(t *testing.T) {
	handler := newTestHandler(t)
	input := &Input{AssessmentID: "asmt-1", Answers: fullAnswerSet(4)}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHandler_Execute_OutOfRangeValue(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		Answers: models.AnswerSet{{QuestionID: "q_content_volume", Value: 6}},
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}

func TestHandler_ParseAndValidate(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "valid payload",
			payload: `{"assessmentId":"asmt-1","answers":[{"questionId":"q_content_volume","value":3}]}`,
			wantErr: false,
		},
		{
			name:    "missing answers field",
			payload: `{"assessmentId":"asmt-1"}`,
			wantErr: true,
		},
		{
			name:    "empty answers array",
			payload: `{"answers":[]}`,
			wantErr: true,
		},
		{
			name:    "answer without value",
			payload: `{"answers":[{"questionId":"q_content_volume"}]}`,
			wantErr: true,
		},
		{
			name:    "non-integer value",
			payload: `{"answers":[{"questionId":"q_content_volume","value":"three"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `{{{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := handler.parseAndValidate(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*errors.StandardError)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "asmt-1", input.AssessmentID)
			assert.Len(t, input.Answers, 1)
		})
	}
}
