package domain

import "fmt"

// Status is the inspection lifecycle state. The numeric values are the wire
// codes used by existing clients.
type Status uint8

const (
	StatusScheduled  Status = 0
	StatusInProgress Status = 1
	StatusCompleted  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

type InspectorProfile struct {
	ID              ActorID  `json:"id"`
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
}

func (p InspectorProfile) Validate() error {
	return FirstFailure(
		NonEmpty("inspector_id", string(p.ID)),
		MaxLength("inspector_id", string(p.ID), MaxActorID),
		MaxLength("name", p.Name, MaxInspectorName),
		Specializations(p.Specializations),
	)
}

// Covers reports whether serviceType is one of the inspector's specializations.
func (p InspectorProfile) Covers(serviceType string) bool {
	for _, s := range p.Specializations {
		if s == serviceType {
			return true
		}
	}
	return false
}

type InspectionRecord struct {
	ID            uint64  `json:"id"`
	ProviderID    ActorID `json:"provider_id"`
	InspectorID   ActorID `json:"inspector_id"`
	ServiceType   string  `json:"service_type"`
	ScheduledDate Height  `json:"scheduled_date"`
	ActualDate    *Height `json:"actual_date,omitempty"`
	Status        Status  `json:"status"`
	Location      string  `json:"location"`
	Notes         *string `json:"notes,omitempty"`
	CreatedDate   Height  `json:"created_date"`
}

// InspectionRequest is what an admin supplies to schedule an inspection.
type InspectionRequest struct {
	ProviderID    ActorID
	InspectorID   ActorID
	ServiceType   string
	ScheduledDate Height
	Location      string
}

func (r InspectionRequest) Validate(now Height) error {
	return FirstFailure(
		NonEmpty("provider_id", string(r.ProviderID)),
		MaxLength("provider_id", string(r.ProviderID), MaxActorID),
		NonEmpty("inspector_id", string(r.InspectorID)),
		MaxLength("inspector_id", string(r.InspectorID), MaxActorID),
		MaxLength("service_type", r.ServiceType, MaxServiceType),
		NonEmpty("location", r.Location),
		MaxLength("location", r.Location, MaxLocation),
		NotBefore("scheduled_date", r.ScheduledDate, now),
	)
}

func (r InspectionRequest) Record(id uint64, now Height) InspectionRecord {
	return InspectionRecord{
		ID:            id,
		ProviderID:    r.ProviderID,
		InspectorID:   r.InspectorID,
		ServiceType:   r.ServiceType,
		ScheduledDate: r.ScheduledDate,
		Status:        StatusScheduled,
		Location:      r.Location,
		CreatedDate:   now,
	}
}

// Start moves a scheduled inspection to in-progress at height now.
func (r InspectionRecord) Start(now Height) (InspectionRecord, error) {
	if r.Status != StatusScheduled {
		return r, Reject(ErrInvalidStatus, "start requires scheduled, inspection is "+r.Status.String())
	}
	r.Status = StatusInProgress
	r.ActualDate = &now
	return r, nil
}

// Complete closes an in-progress inspection with the inspector's notes.
func (r InspectionRecord) Complete(notes string) (InspectionRecord, error) {
	if r.Status != StatusInProgress {
		return r, Reject(ErrInvalidStatus, "complete requires in_progress, inspection is "+r.Status.String())
	}
	r.Status = StatusCompleted
	r.Notes = &notes
	return r, nil
}

// AcceptsResults rejects result entry before the inspection has started.
func (r InspectionRecord) AcceptsResults() error {
	if r.Status == StatusScheduled {
		return Reject(ErrInvalidStatus, "results require a started inspection")
	}
	return nil
}

// InspectionResult is keyed by (InspectionID, StandardID).
type InspectionResult struct {
	InspectionID uint64 `json:"inspection_id"`
	StandardID   string `json:"standard_id"`
	Score        int    `json:"score"`
	Notes        string `json:"notes"`
}

func (r InspectionResult) Validate() error {
	return FirstFailure(
		NonEmpty("standard_id", r.StandardID),
		MaxLength("standard_id", r.StandardID, MaxLabel),
		Score("score", r.Score),
		MaxLength("notes", r.Notes, MaxResultNotes),
	)
}
