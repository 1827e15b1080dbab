// Package notify sends best-effort desktop notifications for alerts and
// replans. Delivery failures never affect the control loop.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"tripsentry/internal/environ"
)

// Notifier sends system notifications.
type Notifier struct {
	Enabled bool
}

// Send displays a system notification. On macOS it shells out to osascript;
// on other platforms it is a no-op.
func (n *Notifier) Send(title, message string) error {
	if n == nil || !n.Enabled {
		return nil
	}
	if runtime.GOOS != "darwin" {
		return nil
	}
	return sendMacOSNotification(title, message)
}

func sendMacOSNotification(title, message string) error {
	title = strings.ReplaceAll(title, `"`, `\"`)
	message = strings.ReplaceAll(message, `"`, `\"`)

	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// FormatAlert formats a user-facing notification for an environmental alert.
func FormatAlert(alert environ.AlertSignal) (title, message string) {
	switch alert.Severity {
	case environ.SeverityCritical:
		title = "🚨 Trip Alert: Replanning"
	case environ.SeverityWarning:
		title = "⚠️ Trip Alert"
	default:
		title = "ℹ️ Trip Update"
	}
	message = alert.Message
	return title, message
}

// FormatReplan formats the notification sent after an automatic replan.
func FormatReplan(planName string, swapped, kept int) (title, message string) {
	title = "🔄 Itinerary Updated"
	if kept > 0 {
		message = fmt.Sprintf("%s: %d activities swapped, %d kept without a backup", planName, swapped, kept)
	} else {
		message = fmt.Sprintf("%s: %d activities swapped to indoor backups", planName, swapped)
	}
	return title, message
}
