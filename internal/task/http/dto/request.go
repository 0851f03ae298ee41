// Package dto provides data transfer objects for the task endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/tasks/internal/task/domain"
	customValidation "github.com/allisson/tasks/internal/validation"
)

var (
	titleRules = []validation.Rule{
		validation.Required,
		customValidation.NotBlank,
		validation.RuneLength(1, 200),
	}
	descriptionRules = []validation.Rule{
		validation.RuneLength(0, 1000),
	}
)

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// Validate checks the request shape. Status values are checked by the use case.
func (r *CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, titleRules...),
		validation.Field(&r.Description, descriptionRules...),
	)
}

// ToInput converts the request into the use case input.
func (r *CreateTaskRequest) ToInput() domain.CreateTaskInput {
	return domain.CreateTaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}

// UpdateTaskRequest is the body of PUT /api/v1/tasks/:id. It replaces the
// task; an omitted status keeps the current one.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// Validate checks the request shape.
func (r *UpdateTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, titleRules...),
		validation.Field(&r.Description, descriptionRules...),
	)
}

// ToInput converts the request into the use case input.
func (r *UpdateTaskRequest) ToInput() domain.UpdateTaskInput {
	return domain.UpdateTaskInput{Title: r.Title, Description: r.Description, Status: r.Status}
}
