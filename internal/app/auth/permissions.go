package auth

import "github.com/yigit/taluation/internal/app/models"

// The Can* functions are pure permission rules over the acting account and the
// resource it targets. A nil actor is never allowed anything.

// CanModifyAccount allows the account's owner and admins to update or delete it
func CanModifyAccount(actor, target *models.Account) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID || actor.IsAdmin()
}

// CanViewFullAccount decides between the full profile and the redacted projection
func CanViewFullAccount(actor, target *models.Account) bool {
	return CanModifyAccount(actor, target)
}

// CanChangeRole allows only admins to change an account's type
func CanChangeRole(actor *models.Account) bool {
	return actor.IsAdmin()
}

// CanListAccounts allows only admins to list every account
func CanListAccounts(actor *models.Account) bool {
	return actor.IsAdmin()
}

// CanCreateClass allows teachers and admins
func CanCreateClass(actor *models.Account) bool {
	if actor == nil {
		return false
	}
	return actor.Type == models.RoleTeacher || actor.IsAdmin()
}

// CanAssignTeacher allows only admins to pick a class owner other than themselves
func CanAssignTeacher(actor *models.Account) bool {
	return actor.IsAdmin()
}

// CanModifyClass allows the owning teacher and admins
func CanModifyClass(actor *models.Account, class *models.Class) bool {
	if actor == nil || class == nil {
		return false
	}
	return class.TeacherID == actor.ID || actor.IsAdmin()
}

// CanCreateEvaluation allows students only
func CanCreateEvaluation(actor *models.Account) bool {
	return actor != nil && actor.Type == models.RoleStudent
}

// CanDeleteEvaluation allows the authoring student and admins
func CanDeleteEvaluation(actor *models.Account, evaluation *models.Evaluation) bool {
	if actor == nil || evaluation == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.Type == models.RoleStudent && evaluation.StudentID == actor.ID
}
