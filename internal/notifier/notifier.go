// Package notifier posts desktop notifications through the neurozen tray
// app. The tray app advertises itself with a lockfile holding
// "<port>|<pid>|<secret>"; notifications are only sent when that pid is a
// running tray process.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess

	// ErrTrayNotRunning is returned when no live tray app could be found.
	ErrTrayNotRunning = errors.New(constants.TrayAppExecutable + " is not running")
)

const secretHeader = "X-Neurozen-Secret"

type Notifier struct {
	client *http.Client
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 2 * time.Second}}
}

// Notify shows text through the tray app, retrying transient failures.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	ep, err := findAndValidateTrayProcess(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs}
	for attempt := 1; ; attempt++ {
		err = n.send(ctx, ep, payload)
		if err == nil || attempt >= constants.NotifyMaxRetries {
			return err
		}
		logger.Debug("Notification failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(constants.NotifyRetryDelay):
		}
	}
}

// FocusComplete is the message shown when a focus period ends.
func FocusComplete(minutes, breakMinutes int) string {
	if breakMinutes <= 0 {
		return fmt.Sprintf("Focus session complete: %d minutes logged.", minutes)
	}
	return fmt.Sprintf("Focus session complete: %d minutes logged. Take a %d minute break.", minutes, breakMinutes)
}

// BreakOver is the message shown when a break ends.
func BreakOver() string {
	return "Break over. Ready for the next session?"
}

// GetTrayAppConfigDir returns the directory holding the tray app's lockfile.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// settings.json may move the lockfile elsewhere
	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if d := store.Settings.LockfileDir; d != nil && *d != "" {
				return *d, nil
			}
		}
	}
	return trayConfigDir, nil
}

type endpoint struct {
	port   int
	pid    int
	secret string
}

func parseLockfile(content string) (endpoint, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return endpoint{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return endpoint{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return endpoint{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return endpoint{}, errors.New("secret in lockfile is empty")
	}
	return endpoint{port: port, pid: pid, secret: secret}, nil
}

func findAndValidateTrayProcess(lockfilePath string) (endpoint, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return endpoint{}, ErrTrayNotRunning
	}
	ep, err := parseLockfile(string(content))
	if err != nil {
		return endpoint{}, err
	}

	process, err := findProcessFunc(ep.pid)
	if err != nil || process == nil {
		return endpoint{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayAppExecutable) {
		return endpoint{}, fmt.Errorf("process with PID %d is not %s (is %s)", ep.pid, constants.TrayAppExecutable, process.Executable())
	}
	return ep, nil
}

func (n *Notifier) send(ctx context.Context, ep endpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", ep.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, ep.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}
