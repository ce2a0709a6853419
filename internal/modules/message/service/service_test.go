package service

import (
	"context"
	"strings"
	"testing"

	"anoa.com/skillswap/internal/entity"
	messageDto "anoa.com/skillswap/internal/modules/message/dto"
	notifService "anoa.com/skillswap/internal/modules/notification/service"
	"anoa.com/skillswap/internal/testutil"
	"anoa.com/skillswap/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *testutil.Store
	svc     MessageService
	teacher entity.User
	student entity.User
	swap    *entity.Swap
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	store := testutil.NewStore()
	notifications := notifService.NewNotificationService(store.NotificationRepo(), nil)
	svc := NewMessageService(store.Messages(), store.Swaps(), notifications, nil, 0, store.Tx())

	teacher := store.AddUser("Ana", "ana@example.com")
	student := store.AddUser("Ben", "ben@example.com")
	p := store.AddProposal(teacher.ID, "Guitar for Spanish", []string{"Guitar"}, []string{"Spanish"})
	app := &entity.Application{ProposalID: p.ID, ApplicantID: student.ID, PitchMessage: "hi"}
	require.NoError(t, store.Applications().Create(ctx, app))
	swap := &entity.Swap{ProposalID: p.ID, ApplicationID: app.ID, TeacherID: teacher.ID, StudentID: student.ID}
	require.NoError(t, store.Swaps().Create(ctx, swap))

	return fixture{store: store, svc: svc, teacher: teacher, student: student, swap: swap}
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Send(context.Background(), f.student.ID, f.swap.ID, messageDto.SendMessageRequest{Content: "<p>Hola!</p><script>alert(1)</script>"})
	require.NoError(t, err)

	assert.Equal(t, "Hola!", res.Content)
	assert.Equal(t, f.teacher.ID, res.ReceiverID)
	assert.Equal(t, "Ben", res.Sender.Name)

	notes := f.store.Notifications(f.teacher.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NotificationMessageReceived, notes[0].Type)
	assert.Equal(t, "New message from Ben", notes[0].Message)
	assert.Equal(t, "/dashboard?tab=active-swaps&swapId="+f.swap.ID.String(), notes[0].Link)
	assert.Empty(t, f.store.Notifications(f.student.ID))
}

func TestSendMessageByNonParticipant(t *testing.T) {
	f := newFixture(t)
	stranger := f.store.AddUser("Cara", "cara@example.com")

	_, err := f.svc.Send(context.Background(), stranger.ID, f.swap.ID, messageDto.SendMessageRequest{Content: "let me in"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	assert.Equal(t, 0, f.store.Count("messages"))
	assert.Equal(t, 0, f.store.Count("notifications"))
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "<b></b>", strings.Repeat("x", 2001)} {
		_, err := f.svc.Send(ctx, f.teacher.ID, f.swap.ID, messageDto.SendMessageRequest{Content: content})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	}

	_, err := f.svc.Send(ctx, f.teacher.ID, uuid.New(), messageDto.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 0, f.store.Count("messages"))
}

func TestListMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.student.ID, f.swap.ID, messageDto.SendMessageRequest{Content: "first"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.teacher.ID, f.swap.ID, messageDto.SendMessageRequest{Content: "second"})
	require.NoError(t, err)

	msgs, err := f.svc.List(ctx, f.teacher.ID, f.swap.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "Ben", msgs[0].Sender.Name)
	assert.Equal(t, "second", msgs[1].Content)

	stranger := f.store.AddUser("Cara", "cara@example.com")
	_, err = f.svc.List(ctx, stranger.ID, f.swap.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
