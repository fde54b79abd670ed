package user

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Create(ctx context.Context, name string, age int32, email, password string) (Response, error)
	Get(ctx context.Context, id int32) (Response, error)
	GetAll(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, id int32, name string, age int32, password string) (Response, error)
	Delete(ctx context.Context, id int32) (bool, error)
	UpdatePermissions(ctx context.Context, id int32, names []string) error
}

type userService struct {
	repo     Repo
	hashCost int
	logger   *zap.Logger
}

func NewService(repo Repo, hashCost int, logger *zap.Logger) Service {
	return &userService{
		repo:     repo,
		hashCost: hashCost,
		logger:   logger,
	}
}

func (s *userService) Create(ctx context.Context, name string, age int32, email, password string) (Response, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return Response{}, err
	}

	u, err := s.repo.Create(ctx, CreateParams{
		Name:     name,
		Age:      age,
		Email:    email,
		Password: string(hashed),
	})
	if err != nil {
		return Response{}, err
	}
	return toResponse(u), nil
}

func (s *userService) Get(ctx context.Context, id int32) (Response, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return toResponse(u), nil
}

func (s *userService) GetAll(ctx context.Context) ([]Response, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Response, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, id int32, name string, age int32, password string) (Response, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return Response{}, err
	}

	u, err := s.repo.Update(ctx, id, UpdateParams{
		Name:     name,
		Age:      age,
		Password: string(hashed),
	})
	if err != nil {
		return Response{}, err
	}
	return toResponse(u), nil
}

func (s *userService) Delete(ctx context.Context, id int32) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *userService) UpdatePermissions(ctx context.Context, id int32, names []string) error {
	return s.repo.ReplacePermissions(ctx, id, names)
}
