package ui

import "github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"

func MenuByRole(role enums.Role) [][]string {
	switch role {
	case enums.RoleAdmin:
		return [][]string{
			{"/add", "/stats"},
			{"/history", "/top"},
			{"/requests", "/audit"},
		}
	default:
		return [][]string{
			{"/add", "/stats"},
			{"/history", "/top"},
			{"/types", "/help"},
		}
	}
}
