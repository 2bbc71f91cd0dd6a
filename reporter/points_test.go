package reporter

import (
	"context"
	"testing"

	"github.com/adoreport/adoreport/azure"
	"github.com/stretchr/testify/require"
)

func TestPointResolver_Resolve(t *testing.T) {
	svc := newFakeService(4)
	r := NewPointResolver(svc, "Shop")

	id, err := r.Resolve(context.Background(), 4, []int{1234})
	require.NoError(t, err)
	require.Equal(t, 12340, id)
}

func TestPointResolver_Errors(t *testing.T) {
	plan := func(id string) *azure.ShallowReference { return &azure.ShallowReference{ID: id} }

	tests := []struct {
		name    string
		points  []azure.TestPoint
		err     error
		wantErr error
		wantMsg string
	}{
		{
			name:    "no points",
			points:  nil,
			wantErr: ErrNoTestPoint,
			wantMsg: "no test points found for test case [5]",
		},
		{
			name:    "other plan",
			points:  []azure.TestPoint{{ID: 50, TestPlan: plan("9"), TestCase: plan("5")}},
			wantErr: ErrPlanMismatch,
			wantMsg: "test case [5] associated with test plan 4",
		},
		{
			name: "one of several points in another plan",
			points: []azure.TestPoint{
				{ID: 50, TestPlan: plan("4"), TestCase: plan("5")},
				{ID: 51, TestPlan: plan("8"), TestCase: plan("5")},
			},
			wantErr: ErrPlanMismatch,
		},
		{
			name:    "missing plan",
			points:  []azure.TestPoint{{ID: 50}},
			wantErr: ErrPlanMismatch,
			wantMsg: "test case [5]",
		},
		{
			name:    "non numeric plan",
			points:  []azure.TestPoint{{ID: 50, TestPlan: plan("x")}},
			wantErr: ErrPlanMismatch,
		},
		{
			name:    "service error",
			err:     errBoom,
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(4)
			svc.getTestPoints = func([]int) ([]azure.TestPoint, error) {
				return tt.points, tt.err
			}

			_, err := NewPointResolver(svc, "Shop").Resolve(context.Background(), 4, []int{5})
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				require.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestPointResolver_FirstPoint(t *testing.T) {
	svc := newFakeService(4)
	svc.getTestPoints = func([]int) ([]azure.TestPoint, error) {
		return []azure.TestPoint{
			{ID: 7, TestPlan: &azure.ShallowReference{ID: "4"}},
			{ID: 8, TestPlan: &azure.ShallowReference{ID: "4"}},
		}, nil
	}

	id, err := NewPointResolver(svc, "Shop").Resolve(context.Background(), 4, []int{5})
	require.NoError(t, err)
	require.Equal(t, 7, id)
}
