package services

import (
	"context"
	"strings"

	"brewshop/internal/models"
	"brewshop/internal/repository"
)

type SignupService interface {
	JoinBeerClub(ctx context.Context, member *models.BeerClubMember) error
	SubmitContactMessage(ctx context.Context, message *models.ContactMessage) error
}

type signupService struct {
	signupRepo repository.SignupRepository
}

func NewSignupService(signupRepo repository.SignupRepository) SignupService {
	return &signupService{signupRepo: signupRepo}
}

func (s *signupService) JoinBeerClub(ctx context.Context, member *models.BeerClubMember) error {
	member.Email = strings.TrimSpace(member.Email)
	verr := &ValidationError{}
	verr.Required("first_name", member.FirstName)
	verr.Required("last_name", member.LastName)
	verr.Max("first_name", member.FirstName, 100)
	verr.Max("last_name", member.LastName, 100)
	verr.Max("phone", member.Phone, 15)
	verr.Email("email", member.Email)
	if err := verr.OrNil(); err != nil {
		return err
	}
	return s.signupRepo.CreateBeerClubMember(ctx, member)
}

func (s *signupService) SubmitContactMessage(ctx context.Context, message *models.ContactMessage) error {
	message.Email = strings.TrimSpace(message.Email)
	verr := &ValidationError{}
	verr.Required("name", message.Name)
	verr.Required("message", message.Message)
	verr.Max("name", message.Name, 100)
	verr.Max("phone", message.Phone, 15)
	verr.Email("email", message.Email)
	if err := verr.OrNil(); err != nil {
		return err
	}
	return s.signupRepo.CreateContactMessage(ctx, message)
}
