package models

// Conversation groups the messages of one course.
type Conversation struct {
	CourseID    string          `json:"courseId"`
	CourseTitle string          `json:"courseTitle"`
	Messages    []CourseMessage `json:"messages"`
	UnreadCount int             `json:"unreadCount"`
	LastMessage *CourseMessage  `json:"lastMessage,omitempty"`
}

// DashboardStats are the headline numbers on the mentor dashboard.
type DashboardStats struct {
	TotalCourses  int     `json:"totalCourses"`
	TotalStudents int     `json:"totalStudents"`
	TotalEarnings int     `json:"totalEarnings"`
	AverageRating float64 `json:"averageRating"`
	UnreadTotal   int     `json:"unreadTotal"`
}

// MentorDashboard is everything the mentor dashboard renders.
type MentorDashboard struct {
	Profile          *Profile        `json:"profile"`
	Courses          []Course        `json:"courses"`
	Stats            DashboardStats  `json:"stats"`
	Conversations    []Conversation  `json:"conversations"`
	UpcomingSessions []CourseSession `json:"upcomingSessions"`
	PastSessions     []CourseSession `json:"pastSessions"`
	RecentSessions   []CourseSession `json:"recentSessions"`
}
