package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trust_ledger/internal/domain"
)

func scheduled() domain.InspectionRecord {
	return domain.InspectionRequest{
		ProviderID:    "provider-1",
		InspectorID:   "insp-1",
		ServiceType:   "plumbing",
		ScheduledDate: 200,
		Location:      "12 Harbour Rd",
	}.Record(1, 160)
}

func TestInspection_Lifecycle(t *testing.T) {
	r := scheduled()
	assert.Equal(t, domain.StatusScheduled, r.Status)
	assert.Nil(t, r.ActualDate)
	assert.ErrorIs(t, r.AcceptsResults(), domain.ErrInvalidStatus)

	_, err := r.Complete("early")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	r, err = r.Start(210)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, r.Status)
	require.NotNil(t, r.ActualDate)
	assert.Equal(t, domain.Height(210), *r.ActualDate)
	assert.NoError(t, r.AcceptsResults())

	_, err = r.Start(211)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	r, err = r.Complete("all good")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, r.Status)
	assert.Equal(t, "all good", *r.Notes)
	assert.NoError(t, r.AcceptsResults())

	_, err = r.Start(212)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = r.Complete("again")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestInspectionRequest_Validate(t *testing.T) {
	req := domain.InspectionRequest{ProviderID: "p", InspectorID: "i", ScheduledDate: 100, Location: "x"}
	assert.ErrorIs(t, req.Validate(160), domain.ErrInvalidDate)

	req.ScheduledDate = 160
	assert.NoError(t, req.Validate(160))

	req.Location = strings.Repeat("l", 201)
	assert.ErrorIs(t, req.Validate(160), domain.ErrInvalidStringLength)

	req.Location = ""
	assert.ErrorIs(t, req.Validate(160), domain.ErrEmptyField)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "scheduled", domain.StatusScheduled.String())
	assert.Equal(t, "in_progress", domain.StatusInProgress.String())
	assert.Equal(t, "completed", domain.StatusCompleted.String())
	assert.Equal(t, "status(9)", domain.Status(9).String())
}

func TestInspectorProfile(t *testing.T) {
	p := domain.InspectorProfile{ID: "insp-1", Name: "Dana", Specializations: []string{"plumbing", "electrical"}}
	assert.NoError(t, p.Validate())
	assert.True(t, p.Covers("electrical"))
	assert.False(t, p.Covers("roofing"))

	p.Specializations = nil
	assert.ErrorIs(t, p.Validate(), domain.ErrEmptyField)
}

func TestInspectionResult_Validate(t *testing.T) {
	res := domain.InspectionResult{InspectionID: 1, StandardID: "ISO-1", Score: 101}
	assert.ErrorIs(t, res.Validate(), domain.ErrInvalidRating)
	res.Score = 0
	assert.NoError(t, res.Validate())
	res.StandardID = ""
	assert.ErrorIs(t, res.Validate(), domain.ErrEmptyField)
}
