package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/internal/transport/api/tokens"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const JWTTokenExpire = 24 * time.Hour

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	jwtTokenSecret []byte
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

type RegisterUserArgs struct {
	Email    string
	Name     string
	Password string
}

// Register создает юзера в базе данных. После успешного создания генерирует jwt token.
// Возвращает 3 значения: созданный юзер, токен и ошибку. При занятом email вернется
// ошибка domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	password, hashErr := s.hashPassword(args.Password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	user, userErr := s.userRepo.CreateUser(ctx, repoargs.CreateUser{
		Email:    args.Email,
		Name:     args.Name,
		Password: password,
	})
	if userErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", userErr)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.IsAdmin, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", tokenErr.Error())
	}
	return user, token, nil
}

type LoginUserArgs struct {
	Email    string
	Password string
}

// Login проверяет пару email/пароль и возвращает юзера с новым jwt токеном.
// Неверный пароль и несуществующий email неразличимы для вызывающего:
// в обоих случаях возвращается domain.ErrPasswordMissMatch.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, userErr := s.userRepo.FindByEmail(ctx, args.Email)
	if userErr != nil {
		return nil, "", domain.ErrPasswordMissMatch
	}

	if !s.comparePasswords(user.EncryptedPassword, args.Password) {
		return nil, "", domain.ErrPasswordMissMatch
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.IsAdmin, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("logging user in: %s", tokenErr.Error())
	}
	return user, token, nil
}

// GetByID возвращает юзера по id (профиль, баланс, счетчики).
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

func (s *UserService) UpdateName(ctx context.Context, id int64, name string) (*domain.User, error) {
	user, err := s.userRepo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("updating user %d name: %w", id, err)
	}
	return user, nil
}

// Deposit зачисляет подтвержденное шлюзом пополнение на баланс. Вызывается из
// платежного колбэка; сумма должна быть положительной.
func (s *UserService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be positive", domain.ErrValidation)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		if _, lockErr := userRepo.LockByID(c, userID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if depositErr := userRepo.ApplyDeposit(c, userID, amount); depositErr != nil {
			return depositErr //nolint:wrapcheck
		}

		return createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   userID,
			Title:    "Deposit Received",
			Message:  fmt.Sprintf("Your deposit of %s has been credited to your balance.", amount.StringFixed(2)),
			Severity: domain.SeveritySuccess,
		})
	})

	if txErr != nil {
		return fmt.Errorf("depositing for user %d: %w", userID, txErr)
	}
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %s", err.Error())
	}
	return string(bytes), nil
}

func (s *UserService) comparePasswords(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
