package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

// arma el stack completo con el mismo orden de handlers que cmd/bot
func newTestStack() (*fakeGateway, *fakeAcceptanceRepo, *fakePolicyRepo, *Dispatcher) {
	gw := newFakeGateway()
	acceptRepo := newFakeAcceptanceRepo()
	policyRepo := newFakePolicyRepo()

	disp := NewDispatcher(
		JoinHandler{Svc: NewJoinService(gw, &fakePromptRepo{}, "v1", "los términos")},
		AcceptHandler{Svc: NewAcceptService(gw, acceptRepo, "v1", "los términos")},
		CommandHandler{Svc: NewAdminService(gw, policyRepo, acceptRepo, ownerID), Gw: gw},
		ModerationHandler{Svc: NewModerationService(gw, policyRepo)},
	)
	return gw, acceptRepo, policyRepo, disp
}

func TestDispatchFullAcceptanceCycle(t *testing.T) {
	gw, acceptRepo, _, disp := newTestStack()
	ctx := context.Background()

	disp.Dispatch(ctx, domain.MembersJoined{
		ChatID:  "100",
		Members: []domain.Member{{ID: "7", DisplayName: "Ann"}},
	})

	require.Len(t, gw.restricts, 1)
	assert.Equal(t, domain.Restricted, gw.restricts[0].Perms)
	require.Len(t, gw.sent, 1)
	require.NotNil(t, gw.sent[0].Control)
	assert.Equal(t, "accept:7", gw.sent[0].Control.Payload)

	disp.Dispatch(ctx, domain.ActionTriggered{
		ChatID: "100", ActorID: "7", ActorName: "ann",
		MessageRef: "msg-1", Payload: "accept:7", ActionID: "act-1",
	})

	require.Len(t, gw.restricts, 2)
	assert.Equal(t, domain.Unrestricted, gw.restricts[1].Perms)
	assert.Equal(t, 1, acceptRepo.count())
	require.Len(t, gw.deleted, 1)
	assert.Equal(t, [2]string{"100", "msg-1"}, gw.deleted[0])
}

func TestDispatchWrongUserClick(t *testing.T) {
	gw, acceptRepo, _, disp := newTestStack()

	disp.Dispatch(context.Background(), domain.ActionTriggered{
		ChatID: "100", ActorID: "9", MessageRef: "msg-1",
		Payload: "accept:7", ActionID: "act-1",
	})

	assert.Empty(t, gw.restricts)
	assert.Zero(t, acceptRepo.count())
	require.Len(t, gw.answers, 1)
	assert.Contains(t, gw.answers[0].Text, "no es para vos")
}

func TestDispatchVoiceOnlyScenario(t *testing.T) {
	gw, _, policyRepo, disp := newTestStack()
	gw.roles["adm"] = domain.RoleAdmin
	ctx := context.Background()

	disp.Dispatch(ctx, domain.CommandInvoked{
		ChatID: "200", ChatTitle: "General", ChatType: domain.ChatGroup,
		InvokerID: "adm", MessageRef: "m-0", Name: "voiceonly_on",
	})
	p, _ := policyRepo.Get(ctx, "200")
	require.Equal(t, storage.VoiceOnlyOn, p.VoiceOnlyMode)

	// texto de un miembro común => borrado
	disp.Dispatch(ctx, domain.ContentPosted{
		ChatID: "200", ChatType: domain.ChatGroup, AuthorID: "5",
		MessageRef: "m-1", Kind: domain.ContentText,
	})
	require.Len(t, gw.deleted, 1)

	// voz del mismo miembro => queda
	disp.Dispatch(ctx, domain.ContentPosted{
		ChatID: "200", ChatType: domain.ChatGroup, AuthorID: "5",
		MessageRef: "m-2", Kind: domain.ContentVoice,
	})
	assert.Len(t, gw.deleted, 1)
}

// El orden de la lista es el contrato: un comando registrado nunca llega al
// filtro, aunque venga de un no-admin en un chat con voice-only activo.
func TestDispatchKnownCommandNeverFiltered(t *testing.T) {
	gw, _, policyRepo, disp := newTestStack()
	voiceOnlyOn(t, policyRepo, "200")

	disp.Dispatch(context.Background(), domain.CommandInvoked{
		ChatID: "200", ChatType: domain.ChatGroup, InvokerID: "5",
		MessageRef: "m-1", Name: "voiceonly_off",
	})

	// el command handler respondió (rechazo de admin) y el mensaje NO se borró
	assert.Empty(t, gw.deleted)
	require.Len(t, gw.sent, 1)
	assert.Contains(t, gw.sent[0].Text, "admins")
}

func TestDispatchUnknownCommandFallsThroughToFilter(t *testing.T) {
	gw, _, policyRepo, disp := newTestStack()
	voiceOnlyOn(t, policyRepo, "200")

	disp.Dispatch(context.Background(), domain.CommandInvoked{
		ChatID: "200", ChatType: domain.ChatGroup, InvokerID: "5",
		MessageRef: "m-1", Name: "loquesea",
	})

	// "/loquesea" es texto como cualquier otro: el catch-all lo borra
	require.Len(t, gw.deleted, 1)
	assert.Equal(t, [2]string{"200", "m-1"}, gw.deleted[0])
}

func TestDispatchUnknownCommandInPrivateIgnored(t *testing.T) {
	gw, _, _, disp := newTestStack()

	disp.Dispatch(context.Background(), domain.CommandInvoked{
		ChatID: "dm-1", ChatType: domain.ChatPrivate, InvokerID: "5",
		MessageRef: "m-1", Name: "loquesea",
	})
	assert.Empty(t, gw.deleted)
	assert.Empty(t, gw.sent)
}

func TestDispatchStartCommand(t *testing.T) {
	gw, _, _, disp := newTestStack()

	disp.Dispatch(context.Background(), domain.CommandInvoked{
		ChatID: "dm-1", ChatType: domain.ChatPrivate, InvokerID: "5", Name: "start",
	})
	require.Len(t, gw.sent, 1)
	assert.Contains(t, gw.sent[0].Text, "Hola")
}

func TestDispatchExportSendsFile(t *testing.T) {
	gw, acceptRepo, _, disp := newTestStack()
	_, _ = acceptRepo.Insert(context.Background(), storage.AcceptanceRecord{UserID: "7", ChatID: "100", TermsVersion: "v1"})

	disp.Dispatch(context.Background(), domain.CommandInvoked{
		ChatID: "dm-1", ChatType: domain.ChatPrivate, InvokerID: ownerID, Name: "export_users",
	})

	require.Len(t, gw.fileNames, 1)
	assert.Equal(t, "user_acceptances.csv", gw.fileNames[0])
	assert.Contains(t, string(gw.fileData[0]), "user_id,username")
}

type boomHandler struct{}

func (boomHandler) Matches(ev domain.Event) bool { return true }
func (boomHandler) Handle(ctx context.Context, ev domain.Event) error {
	return errors.New("boom")
}

func TestDispatchContainsHandlerErrors(t *testing.T) {
	probe := &probeHandler{}
	disp := NewDispatcher(boomHandler{}, probe)

	// el error del primer handler se loguea y se contiene; el siguiente
	// evento se procesa normal
	disp.Dispatch(context.Background(), domain.ContentPosted{ChatID: "200"})
	assert.Equal(t, 0, probe.hits) // boom matcheó primero, probe no corre

	disp2 := NewDispatcher(probe)
	disp2.Dispatch(context.Background(), domain.ContentPosted{ChatID: "200"})
	assert.Equal(t, 1, probe.hits)
}

type probeHandler struct{ hits int }

func (h *probeHandler) Matches(ev domain.Event) bool { return true }
func (h *probeHandler) Handle(ctx context.Context, ev domain.Event) error {
	h.hits++
	return nil
}

func TestDispatchFirstMatchWins(t *testing.T) {
	first := &probeHandler{}
	second := &probeHandler{}
	disp := NewDispatcher(first, second)

	disp.Dispatch(context.Background(), domain.ContentPosted{ChatID: "200"})
	assert.Equal(t, 1, first.hits)
	assert.Equal(t, 0, second.hits)
}
