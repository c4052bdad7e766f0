package backups

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/neurozen/internal/backup"
	"github.com/julianstephens/neurozen/internal/cli/clitest"
	"github.com/julianstephens/neurozen/internal/tasks"
)

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list on an empty directory failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}

	list, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d backups, want 1", len(list))
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list failed: %v", err)
	}
}

func TestBackupRestoreByName(t *testing.T) {
	ctx, u, _ := clitest.WithUser(t)
	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	snapshot, err := mgr.Create(ctx.Ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Work done after the snapshot disappears on restore.
	task, err := ctx.Service.CreateTask(ctx.Ctx, u.ID, tasks.NewTask{Title: "after", Points: 10})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := ctx.Service.CompleteTask(ctx.Ctx, u.ID, task.ID); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(snapshot), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	restored, err := ctx.Service.User(ctx.Ctx, u.ID)
	if err != nil {
		t.Fatalf("User() after restore error = %v", err)
	}
	if restored.Points != 0 {
		t.Errorf("points after restore = %d, want 0", restored.Points)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _, _ := clitest.WithUser(t)

	cmd := &BackupRestoreCmd{BackupFile: "neurozen-19990101-0000.db", Yes: true}
	if err := cmd.Run(ctx); err == nil {
		t.Error("restore of a missing backup should fail")
	}
}
