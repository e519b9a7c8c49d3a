package enums

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)
