package controller

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/flange/spatialmath"
)

// MountType says whether a tool rides on the robot flange or is fixed in the cell.
type MountType int

// Mount types.
const (
	OnRobot MountType = iota
	Extern
)

func (m MountType) String() string {
	switch m {
	case OnRobot:
		return "on_robot"
	case Extern:
		return "extern"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (m MountType) MarshalText() ([]byte, error) {
	if m != OnRobot && m != Extern {
		return nil, errors.Errorf("unknown mount type %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MountType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "on_robot", "onrobot", "":
		*m = OnRobot
	case "extern", "external":
		*m = Extern
	default:
		return errors.Errorf("unknown mount type %q", text)
	}
	return nil
}

// Tool is a tool center point defined by its offset from the flange.
type Tool struct {
	ID        uuid.UUID
	Name      string
	MountType MountType
	Offset    spatialmath.Pose
}

// NewTool returns a tool with a fresh ID.
func NewTool(name string, mount MountType, offset spatialmath.Pose) Tool {
	return Tool{ID: uuid.New(), Name: name, MountType: mount, Offset: offset}
}
