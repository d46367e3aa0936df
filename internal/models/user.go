package models

import (
	"time"
)

type Role string

const (
	RoleMaker   Role = "MAKER"
	RoleChecker Role = "CHECKER"
	RoleUser    Role = "USER"
)

func (r Role) Valid() bool {
	return r == RoleMaker || r == RoleChecker || r == RoleUser
}

type User struct {
	UID       string    `firestore:"uid" json:"uid"`
	Email     string    `firestore:"email" json:"email"`
	FirstName string    `firestore:"firstName" json:"firstName"`
	LastName  string    `firestore:"lastName" json:"lastName"`
	Role      Role      `firestore:"role" json:"role"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
