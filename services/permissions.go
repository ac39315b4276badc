package services

import (
	"context"

	"studybuddy/backend/models"
)

// RoleHierarchy defines the hierarchy of roles in the system
// Higher numbers have more permissions
var RoleHierarchy = map[string]int{
	models.RoleStudent: 1,
	models.RoleMentor:  2,
	models.RoleAdmin:   3,
}

// IsRoleAtLeast checks if a role is at least at the specified level
func IsRoleAtLeast(userRole, requiredRole string) bool {
	userLevel, userExists := RoleHierarchy[userRole]
	requiredLevel, requiredExists := RoleHierarchy[requiredRole]

	if !userExists || !requiredExists {
		return userRole == requiredRole
	}

	return userLevel >= requiredLevel
}

// GetUserRole gets the role of a user, defaulting to student.
func GetUserRole(ctx context.Context, userID string) (string, error) {
	profile, err := GetUserProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.Role == "" {
		return models.RoleStudent, nil
	}
	return profile.Role, nil
}

// CanManageCourse reports whether userID may edit or schedule the course:
// its mentor or an admin.
func CanManageCourse(ctx context.Context, userID string, course *models.Course) (bool, error) {
	if course.MentorID == userID {
		return true, nil
	}
	role, err := GetUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}
