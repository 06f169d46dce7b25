package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/capstone/core"
)

func intPtr(i int) *int { return &i }

func TestSheetOf(t *testing.T) {
	sheet := SheetOf(Grades{TeamID: 3, Sprints: []Sprint{
		{SprintNum: 1, Grade: intPtr(80), Comment: "good"},
		{SprintNum: 2},
	}})
	assert.Equal(t, GradeSheet{
		1: {Grade: "80", Comment: "good"},
		2: {},
	}, sheet)
}

func TestGradeSheetSprints(t *testing.T) {
	tests := []struct {
		name       string
		sheet      GradeSheet
		want       []Sprint
		wantFields []string
	}{
		{
			name:  "ordered by sprint",
			sheet: GradeSheet{2: {Grade: " 70 "}, 1: {Grade: "85", Comment: " nice "}},
			want: []Sprint{
				{SprintNum: 1, Grade: intPtr(85), Comment: "nice"},
				{SprintNum: 2, Grade: intPtr(70)},
			},
		},
		{
			name:  "ungraded sprint kept",
			sheet: GradeSheet{1: {Grade: "60"}, 2: {}},
			want:  []Sprint{{SprintNum: 1, Grade: intPtr(60)}, {SprintNum: 2}},
		},
		{
			name:       "not numeric",
			sheet:      GradeSheet{1: {Grade: "A+"}, 2: {Grade: "101"}},
			wantFields: []string{"sprint1", "sprint2"},
		},
		{
			name:       "comment without grade",
			sheet:      GradeSheet{1: {Comment: "late"}},
			wantFields: []string{"sprint1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sheet.Sprints()
			if tt.wantFields != nil {
				require.Error(t, err)
				assert.True(t, core.IsValidation(err))
				var flds []string
				for _, f := range err.(*core.ValidationError).Fields {
					flds = append(flds, f.Field)
				}
				assert.Equal(t, tt.wantFields, flds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeSheetEmpty(t *testing.T) {
	_, err := GradeSheet{}.Sprints()
	assert.True(t, core.IsValidation(err))
}
