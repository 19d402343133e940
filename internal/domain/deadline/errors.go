package deadline

import "errors"

var ErrUnknownNotificationType = errors.New("unknown notification type")
