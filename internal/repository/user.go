package repository

import (
	"context"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

var ErrUserNotFound = dao.ErrUserNotFound

type UserDAO interface {
	FindByID(ctx context.Context, id uint) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            domain.Role(u.Role),
		ParticipantType: domain.ParticipantType(u.ParticipantType),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(user), nil
}
