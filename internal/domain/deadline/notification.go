package deadline

type NotificationType string

const (
	NotificationReminder7Days NotificationType = "reminder7days"
	NotificationReminder3Days NotificationType = "reminder3days"
	NotificationReminder1Day  NotificationType = "reminder1day"
	NotificationExpired       NotificationType = "expired"
	NotificationSupervisor    NotificationType = "supervisorNotification"
	NotificationHR            NotificationType = "hrNotification"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationReminder7Days, NotificationReminder3Days, NotificationReminder1Day,
		NotificationExpired, NotificationSupervisor, NotificationHR:
		return true
	}
	return false
}

// ReminderDays are the days-remaining values that trigger a reminder.
var ReminderDays = []int{7, 3, 1}

// EmployeeNotificationFor returns the notification the employee gets when
// exactly daysRemaining days are left, and false on any other day.
func EmployeeNotificationFor(daysRemaining int) (NotificationType, bool) {
	switch daysRemaining {
	case 7:
		return NotificationReminder7Days, true
	case 3:
		return NotificationReminder3Days, true
	case 1:
		return NotificationReminder1Day, true
	case 0:
		return NotificationExpired, true
	}
	return "", false
}
