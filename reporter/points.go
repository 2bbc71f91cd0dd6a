package reporter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adoreport/adoreport/azure"
)

var (
	ErrNoTestPoint  = errors.New("no test points found")
	ErrPlanMismatch = errors.New("test point is not part of the configured test plan")
)

// PointResolver looks up the test point a case id is published against.
// Lookups are not cached: every publication queries the service.
type PointResolver struct {
	svc     Service
	project string
}

func NewPointResolver(svc Service, project string) *PointResolver {
	return &PointResolver{svc: svc, project: project}
}

// Resolve returns the first point of caseIDs in plan planID. Every returned
// point must belong to planID, otherwise ErrPlanMismatch is returned.
func (r *PointResolver) Resolve(ctx context.Context, planID int, caseIDs []int) (int, error) {
	points, err := r.svc.GetTestPoints(ctx, r.project, caseIDs)
	if err != nil {
		return 0, err
	}

	var ids []int
	for _, p := range points {
		if p.TestPlan == nil || p.TestPlan.ID == "" {
			return 0, r.mismatch(p.TestCase, caseIDs, planID)
		}
		plan, err := strconv.Atoi(p.TestPlan.ID)
		if err != nil || plan != planID {
			return 0, r.mismatch(p.TestCase, caseIDs, planID)
		}
		ids = append(ids, p.ID)
	}

	if len(ids) == 0 {
		return 0, fmt.Errorf("%w for test case [%s]", ErrNoTestPoint, joinIDs(caseIDs))
	}
	return ids[0], nil
}

func (r *PointResolver) mismatch(tc *azure.ShallowReference, caseIDs []int, planID int) error {
	caseID := joinIDs(caseIDs)
	if tc != nil && tc.ID != "" {
		caseID = tc.ID
	}
	return fmt.Errorf("%w: could not find test point for test case [%s] associated with test plan %d, check that planId is correct",
		ErrPlanMismatch, caseID, planID)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
