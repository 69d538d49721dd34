package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
)

// Send's validation runs before any store/ephemeral access, so a zero-value
// Mail is enough to exercise the rejection paths without a live Postgres/Redis.
func TestMailSendRejectsEmptyBody(t *testing.T) {
	m := &Mail{}
	_, err := m.Send(context.Background(), SendMailRequest{
		ProjectID: "proj-1", FromWSID: "ws-1", ToWSID: "ws-2", Subject: "hi", Body: "",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestMailSendRejectsOversizedSubject(t *testing.T) {
	m := &Mail{}
	subject := make([]byte, 201)
	for i := range subject {
		subject[i] = 'a'
	}
	_, err := m.Send(context.Background(), SendMailRequest{
		ProjectID: "proj-1", FromWSID: "ws-1", ToWSID: "ws-2", Subject: string(subject), Body: "hi",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestMailSendRejectsOversizedBody(t *testing.T) {
	m := &Mail{}
	body := make([]byte, 64*1024+1)
	for i := range body {
		body[i] = 'a'
	}
	_, err := m.Send(context.Background(), SendMailRequest{
		ProjectID: "proj-1", FromWSID: "ws-1", ToWSID: "ws-2", Subject: "hi", Body: string(body),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestMailSendRejectsInvalidPriority(t *testing.T) {
	m := &Mail{}
	_, err := m.Send(context.Background(), SendMailRequest{
		ProjectID: "proj-1", FromWSID: "ws-1", ToWSID: "ws-2", Subject: "hi", Body: "hi", Priority: "urgent-ish",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}
