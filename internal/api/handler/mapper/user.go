package mapper

import (
	"upkeep/internal/api/handler/response"
	"upkeep/internal/api/models"
)

func ToUserResponse(u models.User) response.User {
	return response.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserResponses(entities []models.User) []response.User {
	users := make([]response.User, len(entities))
	for i, u := range entities {
		users[i] = ToUserResponse(u)
	}
	return users
}
