package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

// Fakes thread-safe: los tests de concurrencia pegan desde varias goroutines.

type restrictCall struct {
	ChatID string
	UserID string
	Perms  domain.PermissionSet
}

type sentMessage struct {
	ChatID  string
	Text    string
	Control *domain.Control
}

type answeredAction struct {
	ActionID string
	Text     string
}

type fakeGateway struct {
	mu        sync.Mutex
	calls     []string // orden global de llamadas ("restrict:...", "send:...", ...)
	restricts []restrictCall
	sent      []sentMessage
	deleted   [][2]string
	answers   []answeredAction
	fileNames []string
	fileData  [][]byte

	roles   map[string]domain.Role
	roleErr error

	restrictErr error
	sendErr     error
	deleteErr   error

	nextRef int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{roles: map[string]domain.Role{}}
}

func (g *fakeGateway) RestrictMember(_ context.Context, chatID, userID string, perms domain.PermissionSet) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "restrict:"+chatID+":"+userID)
	g.restricts = append(g.restricts, restrictCall{ChatID: chatID, UserID: userID, Perms: perms})
	return g.restrictErr
}

func (g *fakeGateway) SendMessage(_ context.Context, chatID, text string, control *domain.Control) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "send:"+chatID)
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.nextRef++
	g.sent = append(g.sent, sentMessage{ChatID: chatID, Text: text, Control: control})
	return fmt.Sprintf("msg-%d", g.nextRef), nil
}

func (g *fakeGateway) SendFile(_ context.Context, chatID, filename string, data []byte, caption string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "file:"+chatID)
	g.fileNames = append(g.fileNames, filename)
	g.fileData = append(g.fileData, data)
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, chatID, messageRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "delete:"+chatID+":"+messageRef)
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, [2]string{chatID, messageRef})
	return nil
}

func (g *fakeGateway) GetMemberRole(_ context.Context, chatID, userID string) (domain.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roleErr != nil {
		return "", g.roleErr
	}
	if r, ok := g.roles[userID]; ok {
		return r, nil
	}
	return domain.RoleMember, nil
}

func (g *fakeGateway) AnswerAction(_ context.Context, actionID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, answeredAction{ActionID: actionID, Text: text})
	return nil
}

func (g *fakeGateway) restrictCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.restricts)
}

type fakeAcceptanceRepo struct {
	mu        sync.Mutex
	order     []string
	recs      map[string]storage.AcceptanceRecord
	insertErr error
}

func newFakeAcceptanceRepo() *fakeAcceptanceRepo {
	return &fakeAcceptanceRepo{recs: map[string]storage.AcceptanceRecord{}}
}

func acceptKey(userID, chatID string) string { return userID + "|" + chatID }

func (r *fakeAcceptanceRepo) Insert(_ context.Context, rec storage.AcceptanceRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return false, r.insertErr
	}
	k := acceptKey(rec.UserID, rec.ChatID)
	if _, ok := r.recs[k]; ok {
		return false, nil
	}
	rec.AcceptedAt = time.Now().UTC()
	r.recs[k] = rec
	r.order = append(r.order, k)
	return true, nil
}

func (r *fakeAcceptanceRepo) ListAll(_ context.Context) ([]storage.AcceptanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]storage.AcceptanceRecord, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.recs[k])
	}
	return out, nil
}

func (r *fakeAcceptanceRepo) CountByChatIDs(_ context.Context, chatIDs []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range chatIDs {
		want[id] = true
	}
	out := map[string]int{}
	for _, rec := range r.recs {
		if want[rec.ChatID] {
			out[rec.ChatID]++
		}
	}
	return out, nil
}

func (r *fakeAcceptanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}

type fakePolicyRepo struct {
	mu       sync.Mutex
	order    []string
	policies map[string]storage.ChatPolicy
}

func newFakePolicyRepo() *fakePolicyRepo {
	return &fakePolicyRepo{policies: map[string]storage.ChatPolicy{}}
}

func (r *fakePolicyRepo) Get(_ context.Context, chatID string) (storage.ChatPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.policies[chatID]; ok {
		return p, nil
	}
	// sin fila => default off
	return storage.ChatPolicy{ChatID: chatID, VoiceOnlyMode: storage.VoiceOnlyOff}, nil
}

func (r *fakePolicyRepo) Upsert(_ context.Context, chatID, chatTitle, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.policies[chatID]; !ok {
		r.order = append(r.order, chatID)
	}
	r.policies[chatID] = storage.ChatPolicy{ChatID: chatID, ChatTitle: chatTitle, VoiceOnlyMode: mode}
	return nil
}

func (r *fakePolicyRepo) ListAll(_ context.Context) ([]storage.ChatPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]storage.ChatPolicy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.policies[id])
	}
	return out, nil
}

type fakePromptRepo struct {
	mu      sync.Mutex
	prompts []storage.PromptLog
	err     error
}

func (r *fakePromptRepo) Record(_ context.Context, p storage.PromptLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.prompts = append(r.prompts, p)
	return nil
}
