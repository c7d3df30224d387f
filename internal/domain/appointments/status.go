package appointments

// Status del ciclo de vida de una cita.
// @Enum queued, in_progress, completed, cancelled
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusQueued, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active: la cita sigue en la cola del día.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusInProgress
}

// ManuallySettable: estados que la recepción puede fijar a mano.
// Completed solo se alcanza al registrar la ficha clínica.
func (s Status) ManuallySettable() bool {
	return s == StatusQueued || s == StatusInProgress || s == StatusCancelled
}

// CanTransitionTo aplica las reglas de la cola:
//
//	queued <-> in_progress, queued|in_progress -> cancelled.
//
// Repetir el estado actual es válido salvo en completed.
func (s Status) CanTransitionTo(to Status) bool {
	if s == to {
		return s != StatusCompleted
	}
	switch s {
	case StatusQueued:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusQueued || to == StatusCancelled
	default:
		return false
	}
}

// AcceptsClinicalRecord: solo una cita activa puede recibir su ficha clínica.
func (s Status) AcceptsClinicalRecord() bool {
	return s.Active()
}
