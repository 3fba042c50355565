package registry

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Appointment is one appointment record.
type Appointment struct {
	ID           string `json:"id"`
	PatientName  string `json:"patient_name"`
	PhoneNumber  string `json:"phone_number"`
	IsNewPatient bool   `json:"is_new_patient"`
	DateTime     string `json:"date_time"`
	Status       Status `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

// Store is an in-memory appointment registry. It is the only mutable
// appointment state in the service; the tool dispatch bridge reads and
// writes it, the HTTP layer reads snapshots.
type Store struct {
	appointments []Appointment
	mu           sync.RWMutex
}

// NewStore creates a registry pre-populated with the given appointments.
func NewStore(seed []Appointment) *Store {
	s := &Store{
		appointments: make([]Appointment, len(seed)),
	}
	copy(s.appointments, seed)
	return s
}

// Seed returns the default demo appointments the service starts with.
func Seed() []Appointment {
	return []Appointment{
		{
			ID:           "101",
			PatientName:  "Ahmed Khan",
			PhoneNumber:  "0300-1234567",
			IsNewPatient: false,
			DateTime:     "Tomorrow at 10:00 AM",
			Status:       StatusPending,
		},
		{
			ID:           "102",
			PatientName:  "Fatima Bibi",
			PhoneNumber:  "0321-7654321",
			IsNewPatient: true,
			DateTime:     "Tomorrow at 11:30 AM",
			Status:       StatusPending,
		},
	}
}

// Find returns the appointment with the given ID.
func (s *Store) Find(id string) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, appt := range s.appointments {
		if appt.ID == id {
			return appt, true
		}
	}
	return Appointment{}, false
}

// FindByNameSubstring returns the first appointment whose patient name
// contains the given text, case-insensitively. This is the recovery path for
// peers that supply an incorrect identifier; with overlapping names it can
// match an unintended record, so callers treat it as best-effort.
func (s *Store) FindByNameSubstring(text string) (Appointment, bool) {
	search := strings.ToLower(strings.TrimSpace(text))
	if search == "" {
		return Appointment{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, appt := range s.appointments {
		if strings.Contains(strings.ToLower(appt.PatientName), search) {
			return appt, true
		}
	}
	return Appointment{}, false
}

// FirstPending returns the first appointment still awaiting a reminder call.
func (s *Store) FirstPending() (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, appt := range s.appointments {
		if appt.Status == StatusPending {
			return appt, true
		}
	}
	return Appointment{}, false
}

// Insert adds a new appointment at the front of the registry and returns it.
// An empty ID is assigned a fresh identifier.
func (s *Store) Insert(appt Appointment) Appointment {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments = append([]Appointment{appt}, s.appointments...)
	return appt
}

// SetStatus updates the status of the appointment with the given ID.
func (s *Store) SetStatus(id string, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i].Status = status
			return true
		}
	}
	return false
}

// Snapshot returns a copy of all appointments for read-only consumers.
func (s *Store) Snapshot() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// Count returns the number of appointments in the registry.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appointments)
}
