package email

import (
	"testing"

	"studycon/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Invitation(t *testing.T) {
	r := NewTemplateRenderer()

	subject, html, text, err := r.Render("invitation", &domain.InvitationEmailData{
		Username:   "alice",
		EventTitle: "Spanish study night",
		HostName:   "hank",
		StartTime:  "2026-10-01 18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "You're invited to Spanish study night", subject)
	assert.Contains(t, html, "alice")
	assert.Contains(t, html, "Spanish study night")
	assert.Contains(t, text, "hank invited you")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()
	_, _, _, err := r.Render("missing", nil)
	require.Error(t, err)
}
