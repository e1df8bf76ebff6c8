package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{ApplicationStatusApplied, ApplicationStatusShortlisted, true},
		{ApplicationStatusApplied, ApplicationStatusRejected, true},
		{ApplicationStatusApplied, ApplicationStatusHired, false},
		{ApplicationStatusShortlisted, ApplicationStatusInterview, true},
		{ApplicationStatusInterview, ApplicationStatusOffered, true},
		{ApplicationStatusOffered, ApplicationStatusHired, true},
		{ApplicationStatusHired, ApplicationStatusRejected, false},
		{ApplicationStatusRejected, ApplicationStatusShortlisted, false},
		{ApplicationStatusWithdrawn, ApplicationStatusApplied, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestApplicationStatus_Withdrawable(t *testing.T) {
	assert.True(t, ApplicationStatusApplied.IsWithdrawable())
	assert.True(t, ApplicationStatusShortlisted.IsWithdrawable())
	assert.False(t, ApplicationStatusInterview.IsWithdrawable())
	assert.True(t, ApplicationStatusHired.IsFinal())
}

func TestStudentProfile_Completeness(t *testing.T) {
	empty := &StudentProfile{}
	assert.Equal(t, 0, empty.Completeness())

	full := &StudentProfile{
		FullName:       "Asha Rao",
		RollNumber:     "CS21B001",
		Department:     "CSE",
		Degree:         "B.Tech",
		GraduationYear: 2025,
		CGPA:           8.7,
		Skills:         []string{"go"},
		Bio:            "Backend enthusiast",
		Phone:          "+91 90000 00000",
		GithubURL:      "https://github.com/asha",
		ResumeURL:      "/files/resumes/x.pdf",
		AvatarURL:      "/files/avatars/x.jpg",
	}
	assert.Equal(t, 100, full.Completeness())

	full.AvatarURL = ""
	full.ResumeURL = ""
	full.Bio = ""
	assert.Equal(t, 75, full.Completeness())
}

func TestJob_IsAcceptingApplications(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Job{Status: JobStatusOpen}).IsAcceptingApplications(now))
	assert.True(t, (&Job{Status: JobStatusOpen, Deadline: &future}).IsAcceptingApplications(now))
	assert.False(t, (&Job{Status: JobStatusOpen, Deadline: &past}).IsAcceptingApplications(now))
	assert.False(t, (&Job{Status: JobStatusClosed}).IsAcceptingApplications(now))
	assert.False(t, (&Job{Status: JobStatusOpen, IsHidden: true}).IsAcceptingApplications(now))
}

func TestConversationPair(t *testing.T) {
	a, b := ConversationPair("b-user", "a-user")
	assert.Equal(t, "a-user", a)
	assert.Equal(t, "b-user", b)

	c := &Conversation{ParticipantA: a, ParticipantB: b}
	assert.True(t, c.HasParticipant("b-user"))
	assert.False(t, c.HasParticipant("c-user"))
	assert.Equal(t, "a-user", c.OtherParticipant("b-user"))
}

func TestBaseModel_BeforeCreateAssignsID(t *testing.T) {
	m := &BaseModel{}
	assert.NoError(t, m.BeforeCreate(nil))
	assert.Len(t, m.ID, 36)

	keep := &BaseModel{ID: "fixed"}
	assert.NoError(t, keep.BeforeCreate(nil))
	assert.Equal(t, "fixed", keep.ID)
}
