package app

import (
	"fmt"

	userHTTP "github.com/allisson/tasks/internal/user/http"
	userRepository "github.com/allisson/tasks/internal/user/repository"
	userUsecase "github.com/allisson/tasks/internal/user/usecase"
)

// UserRepository returns the user repository for DB_DRIVER.
func (c *Container) UserRepository() (userUsecase.UserRepository, error) {
	return c.userRepo.get(func() (userUsecase.UserRepository, error) {
		db, err := c.driverDB("user repository")
		if err != nil {
			return nil, err
		}
		if c.config.DBDriver == driverMySQL {
			return userRepository.NewMySQLUserRepository(db), nil
		}
		return userRepository.NewPostgreSQLUserRepository(db), nil
	})
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	return c.userUseCase.get(func() (userUsecase.UseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
		}

		userRepo, err := c.UserRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for user use case: %w", err)
		}

		useCase, err := userUsecase.NewUserUseCase(txManager, userRepo, outboxRepo, c.config.PasswordStrengthEnabled)
		if err != nil {
			return nil, fmt.Errorf("failed to create user use case: %w", err)
		}
		return useCase, nil
	})
}

// UserHandler returns the /users HTTP handler.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return c.userHandler.get(func() (*userHTTP.UserHandler, error) {
		useCase, err := c.UserUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
		}
		return userHTTP.NewUserHandler(useCase, c.Logger()), nil
	})
}
