package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/tasks/internal/task/domain"
)

func TestCreateTaskRequest_Validate(t *testing.T) {
	long := strings.Repeat("d", 1001)
	ok := "details"

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr bool
	}{
		{name: "valid", req: CreateTaskRequest{Title: "Title", Description: &ok}},
		{name: "valid without description", req: CreateTaskRequest{Title: "Title"}},
		{name: "multibyte title at limit", req: CreateTaskRequest{Title: strings.Repeat("é", 200)}},
		{name: "missing title", req: CreateTaskRequest{}, wantErr: true},
		{name: "blank title", req: CreateTaskRequest{Title: "  "}, wantErr: true},
		{name: "title too long", req: CreateTaskRequest{Title: strings.Repeat("t", 201)}, wantErr: true},
		{name: "description too long", req: CreateTaskRequest{Title: "Title", Description: &long}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateTaskRequest(t *testing.T) {
	desc := "notes"
	req := UpdateTaskRequest{Title: "Title", Description: &desc, Status: "COMPLETED"}

	assert.NoError(t, req.Validate())
	assert.Equal(t, domain.UpdateTaskInput{Title: "Title", Description: &desc, Status: "COMPLETED"}, req.ToInput())

	assert.Error(t, (&UpdateTaskRequest{}).Validate())
}
