package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleStudent  UserRole = "STUDENT"
	RoleAcademic UserRole = "ACADEMIC"
)

// Profile collections, keyed by user id.
const (
	CollectionStudents    = "students"
	CollectionAcademics   = "academics"
	CollectionDepartments = "departments"
)

// StudentProfile is the students/{uid} document.
type StudentProfile struct {
	UID          string      `json:"uid"`
	Name         string      `json:"name"`
	Email        string      `json:"email,omitempty"`
	StudentNo    string      `json:"studentNo,omitempty"`
	DepartmentID string      `json:"departmentId"`
	ClassNo      interface{} `json:"classNo"`
	CreatedAt    *time.Time  `json:"createdAt,omitempty"`
}

// AcademicProfile is the academics/{uid} document.
type AcademicProfile struct {
	UID          string     `json:"uid"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Title        string     `json:"title,omitempty"`
	DepartmentID string     `json:"departmentId,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Department is the departments/{code} document.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
