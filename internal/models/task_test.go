package models

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/neurozen/internal/constants"
)

func validTask() Task {
	return Task{
		ID:         "task-1",
		CategoryID: "cat-1",
		Title:      "Write report",
		Priority:   constants.PriorityMedium,
		Status:     constants.TaskStatusTodo,
		Points:     10,
		CreatedAt:  time.Now(),
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Task)
		wantErr bool
	}{
		{name: "valid task", modify: func(*Task) {}},
		{name: "valid with due date", modify: func(t *Task) { t.DueDate = "2026-03-10" }},
		{name: "zero points", modify: func(t *Task) { t.Points = 0 }},
		{name: "empty title", modify: func(t *Task) { t.Title = "  " }, wantErr: true},
		{name: "title too long", modify: func(t *Task) { t.Title = strings.Repeat("x", 101) }, wantErr: true},
		{name: "missing category", modify: func(t *Task) { t.CategoryID = "" }, wantErr: true},
		{name: "negative points", modify: func(t *Task) { t.Points = -1 }, wantErr: true},
		{name: "unknown priority", modify: func(t *Task) { t.Priority = "urgent" }, wantErr: true},
		{name: "unknown status", modify: func(t *Task) { t.Status = "archived" }, wantErr: true},
		{name: "malformed due date", modify: func(t *Task) { t.DueDate = "10/03/2026" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.modify(&task)
			err := task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTask_IsCompleted(t *testing.T) {
	task := validTask()
	if task.IsCompleted() {
		t.Error("todo task reported completed")
	}
	task.Status = constants.TaskStatusCompleted
	if !task.IsCompleted() {
		t.Error("completed task not reported completed")
	}
}
