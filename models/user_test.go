package models

import "testing"

func TestProfileRoles(t *testing.T) {
	mentor := &Profile{Role: RoleMentor}
	admin := &Profile{Role: RoleAdmin}
	student := &Profile{Role: RoleStudent}

	if !mentor.IsMentor() || !admin.IsMentor() || student.IsMentor() {
		t.Errorf("Unexpected IsMentor results")
	}
	if !student.IsStudent() || mentor.IsStudent() {
		t.Errorf("Unexpected IsStudent results")
	}
	var nilProfile *Profile
	if nilProfile.IsMentor() {
		t.Errorf("Expected nil profile not to be a mentor")
	}
}
