package app

import (
	"fmt"

	taskHTTP "github.com/allisson/tasks/internal/task/http"
	taskRepository "github.com/allisson/tasks/internal/task/repository"
	taskUsecase "github.com/allisson/tasks/internal/task/usecase"
)

// TaskRepository returns the task repository for DB_DRIVER.
func (c *Container) TaskRepository() (taskUsecase.TaskRepository, error) {
	return c.taskRepo.get(func() (taskUsecase.TaskRepository, error) {
		db, err := c.driverDB("task repository")
		if err != nil {
			return nil, err
		}
		if c.config.DBDriver == driverMySQL {
			return taskRepository.NewMySQLTaskRepository(db), nil
		}
		return taskRepository.NewPostgreSQLTaskRepository(db), nil
	})
}

// TaskUseCase returns the owner-scoped task use case, wrapped with business
// metrics when METRICS_ENABLED is set.
func (c *Container) TaskUseCase() (taskUsecase.TaskUseCase, error) {
	return c.taskUseCase.get(func() (taskUsecase.TaskUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for task use case: %w", err)
		}

		taskRepo, err := c.TaskRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get task repository for task use case: %w", err)
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for task use case: %w", err)
		}

		baseUseCase := taskUsecase.NewTaskUseCase(txManager, taskRepo, outboxRepo)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return nil, fmt.Errorf("failed to get business metrics for task use case: %w", err)
			}
			return taskUsecase.NewTaskUseCaseWithMetrics(baseUseCase, businessMetrics), nil
		}

		return baseUseCase, nil
	})
}

// TaskHandler returns the /tasks HTTP handler.
func (c *Container) TaskHandler() (*taskHTTP.TaskHandler, error) {
	return c.taskHandler.get(func() (*taskHTTP.TaskHandler, error) {
		useCase, err := c.TaskUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get task use case for task handler: %w", err)
		}
		return taskHTTP.NewTaskHandler(useCase, c.Logger()), nil
	})
}
