package service

import "github.com/noah-isme/cronograma-api/internal/models"

// ReconcilePlanEnrollments compares a plan with the enrollment history:
// enrollments taken outside the plan, active plan items never enrolled, and courses
// completed more than once.
func ReconcilePlanEnrollments(items []models.PlanItemDetail, enrollments []models.Enrollment) models.PlanReconciliation {
	out := models.PlanReconciliation{
		OutsidePlan:     []models.Enrollment{},
		NotEnrolled:     []models.PlanItemDetail{},
		RepeatedCourses: []models.RepeatedCourse{},
	}

	planned := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.State.Active() {
			planned[item.CourseID] = struct{}{}
		}
	}

	enrolled := make(map[string]struct{}, len(enrollments))
	completed := make(map[string]int)
	var completedOrder []string
	names := make(map[string]*string)
	for _, e := range enrollments {
		if e.Status != models.EnrollmentDropped {
			enrolled[e.CourseID] = struct{}{}
		}
		if e.Status == models.EnrollmentCompleted || e.Status == models.EnrollmentInProgress {
			if _, ok := planned[e.CourseID]; !ok {
				out.OutsidePlan = append(out.OutsidePlan, e)
			}
		}
		if e.Status == models.EnrollmentCompleted {
			if completed[e.CourseID] == 0 {
				completedOrder = append(completedOrder, e.CourseID)
				names[e.CourseID] = e.CourseName
			}
			completed[e.CourseID]++
		}
	}

	for _, item := range items {
		if !item.State.Active() {
			continue
		}
		if _, ok := enrolled[item.CourseID]; !ok {
			out.NotEnrolled = append(out.NotEnrolled, item)
		}
	}

	for _, id := range completedOrder {
		if completed[id] > 1 {
			out.RepeatedCourses = append(out.RepeatedCourses, models.RepeatedCourse{
				CourseID:   id,
				CourseName: names[id],
				Times:      completed[id],
			})
		}
	}
	return out
}
