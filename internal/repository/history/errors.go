package history

import "errors"

var ErrRoomNotFound = errors.New("room record not found")
