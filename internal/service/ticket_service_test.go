package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/ai"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

type ticketFixture struct {
	tickets  *fakeTicketRepo
	messages *fakeMessageRepo
	users    *fakeUserRepo
	mock     *ai.MockAssistant
	svc      *TicketService
}

func newTicketFixture(seedUsers ...domain.User) *ticketFixture {
	users := newFakeUserRepo(seedUsers...)
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	mock := ai.NewMockAssistant()

	activity := NewActivityService(nil, users, time.Minute, zap.NewNop())
	selector := NewAssignmentService(AssignmentDependencies{
		UserRepo: users,
		Activity: activity,
		Window:   time.Minute,
		Rand:     rand.New(rand.NewSource(1)),
	})

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		Assistant:   mock,
		Selector:    selector,
		Dispatcher:  nil,
		Logger:      zap.NewNop(),
	})
	return &ticketFixture{tickets: tickets, messages: messages, users: users, mock: mock, svc: svc}
}

func timePtr(t time.Time) *time.Time { return &t }

func requester() domain.User {
	return domain.User{ID: "u1", Name: "Maria Silva", Email: "maria@example.com", Role: domain.RoleUsuario}
}

func onlineTechnician() domain.User {
	return domain.User{ID: "t1", Name: "João Técnico", Role: domain.RoleTecnico, LastActivityAt: timePtr(time.Now().UTC())}
}

func offlineTechnician() domain.User {
	return domain.User{ID: "t2", Name: "Pedro Técnico", Role: domain.RoleTecnico, LastActivityAt: timePtr(time.Now().UTC().Add(-2 * time.Hour))}
}

func administrator() domain.User {
	return domain.User{ID: "a1", Name: "Ana Admin", Role: domain.RoleAdministrador}
}

func TestCreateTicketAppliesAnalysis(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()

	ticket, msgs, err := fx.svc.CreateTicket(context.Background(), &owner, "Meu computador não liga desde ontem")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Titulo != "Chamado de teste" {
		t.Errorf("titulo = %q, want analysis title", ticket.Titulo)
	}
	if ticket.Categoria == nil || *ticket.Categoria != "Hardware" {
		t.Errorf("categoria = %v, want Hardware", ticket.Categoria)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusInProgress)
	}
	if ticket.AtribuidoATecnico || ticket.TecnicoID != nil {
		t.Error("new ticket must not be assigned")
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want user message plus reply", len(msgs))
	}
	if !msgs[0].IsUser || msgs[0].SenderKind != domain.SenderKindUser {
		t.Errorf("first message should be the user's, got %+v", msgs[0])
	}
	if msgs[1].SenderKind != domain.SenderKindAI || msgs[1].SenderID != nil {
		t.Errorf("second message should be AI-authored with nil sender, got %+v", msgs[1])
	}
	if msgs[1].ID <= msgs[0].ID {
		t.Errorf("reply id %d not after user message id %d", msgs[1].ID, msgs[0].ID)
	}
}

func TestCreateTicketFallsBackWhenAnalysisFails(t *testing.T) {
	fx := newTicketFixture(requester())
	fx.mock.AnalyzeErr = errors.New("upstream down")
	owner := requester()

	ticket, msgs, err := fx.svc.CreateTicket(context.Background(), &owner, "Impressora parou de funcionar")
	if err != nil {
		t.Fatalf("CreateTicket must survive AI outage: %v", err)
	}
	if ticket.Titulo != ai.FallbackTitle {
		t.Errorf("titulo = %q, want %q", ticket.Titulo, ai.FallbackTitle)
	}
	if ticket.Categoria != nil || ticket.Prioridade != nil {
		t.Error("fallback ticket should carry no classification")
	}
	if msgs[1].Body != ai.FallbackReply {
		t.Errorf("reply = %q, want apology fallback", msgs[1].Body)
	}
}

func TestCreateTicketValidatesDescriptionLength(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()

	if _, _, err := fx.svc.CreateTicket(context.Background(), &owner, "curta"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("short description: got %v, want VALIDATION_FAILED", err)
	}
	if _, _, err := fx.svc.CreateTicket(context.Background(), &owner, strings.Repeat("a", 1001)); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("long description: got %v, want VALIDATION_FAILED", err)
	}
	// nine characters even though the UTF-8 encoding spans eighteen bytes
	if _, _, err := fx.svc.CreateTicket(context.Background(), &owner, strings.Repeat("é", 9)); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("nine accented characters: got %v, want VALIDATION_FAILED", err)
	}
	if len(fx.mock.AnalyzeCalls) != 0 {
		t.Error("invalid descriptions must not reach the AI")
	}

	// a thousand accented characters is exactly the cap, byte count aside
	if _, _, err := fx.svc.CreateTicket(context.Background(), &owner, strings.Repeat("ç", 1000)); err != nil {
		t.Errorf("thousand accented characters: %v", err)
	}
}

func TestAddMessageRepliesWithHistoryWhileUnassigned(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Meu computador não liga desde ontem")
	if err != nil {
		t.Fatal(err)
	}

	userMsg, aiMsg, err := fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "Já tentei trocar a tomada")
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if aiMsg == nil {
		t.Fatal("expected AI reply while no technician is assigned")
	}
	if aiMsg.ID <= userMsg.ID {
		t.Errorf("reply id %d not after user message id %d", aiMsg.ID, userMsg.ID)
	}

	prompt := fx.mock.AnalyzeCalls[len(fx.mock.AnalyzeCalls)-1]
	if !strings.Contains(prompt, "Histórico da conversa:") {
		t.Error("prompt should include the conversation history")
	}
	if !strings.Contains(prompt, "Meu computador não liga desde ontem") {
		t.Error("prompt should include the earlier message")
	}
	if strings.Count(prompt, "Já tentei trocar a tomada") != 1 {
		t.Error("new message must appear once, not duplicated via history")
	}
}

func TestAddMessageByTechnicianSuppressesAI(t *testing.T) {
	tecnico := onlineTechnician()
	fx := newTicketFixture(requester(), tecnico)
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Meu computador não liga desde ontem")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	msg, aiMsg, err := fx.svc.AddMessage(context.Background(), &tecnico, ticket.ID, "Vou verificar a fonte de alimentação")
	if err != nil {
		t.Fatalf("AddMessage as technician: %v", err)
	}
	if msg.SenderKind != domain.SenderKindTecnico {
		t.Errorf("sender kind = %q, want tecnico", msg.SenderKind)
	}
	if aiMsg != nil {
		t.Error("AI must stay silent once a technician is assigned")
	}

	// the owner also gets no AI reply after escalation
	_, aiMsg, err = fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "Obrigada, aguardo retorno")
	if err != nil {
		t.Fatal(err)
	}
	if aiMsg != nil {
		t.Error("AI must stay silent for the owner too after escalation")
	}
}

func TestAddMessageAccessAndState(t *testing.T) {
	fx := newTicketFixture(requester(), administrator())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Sistema de ponto fora do ar")
	if err != nil {
		t.Fatal(err)
	}

	outsider := domain.User{ID: "u9", Name: "Outro", Role: domain.RoleUsuario}
	if _, _, err := fx.svc.AddMessage(context.Background(), &outsider, ticket.ID, "posso ajudar?"); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("outsider: got %v, want FORBIDDEN", err)
	}

	admin := administrator()
	if _, err := fx.svc.Resolve(context.Background(), &admin, ticket.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, _, err := fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "ainda está quebrado"); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Errorf("resolved ticket: got %v, want INVALID_STATE", err)
	}

	// reopening restores the conversation
	if _, err := fx.svc.PatchStatus(context.Background(), &owner, ticket.ID, domain.TicketStatusInProgress); err != nil {
		t.Fatalf("PatchStatus reopen: %v", err)
	}
	if _, _, err := fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "reabrindo o chamado"); err != nil {
		t.Errorf("message after reopen: %v", err)
	}

	if _, _, err := fx.svc.AddMessage(context.Background(), &owner, 999, "oi"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Errorf("missing ticket: got %v, want NOT_FOUND", err)
	}
}

func TestPatchStatusOwnerOnly(t *testing.T) {
	fx := newTicketFixture(requester(), administrator())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Monitor piscando sem parar")
	if err != nil {
		t.Fatal(err)
	}

	admin := administrator()
	if _, err := fx.svc.PatchStatus(context.Background(), &admin, ticket.ID, domain.TicketStatusResolved); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("admin patch: got %v, want FORBIDDEN", err)
	}
	if _, err := fx.svc.PatchStatus(context.Background(), &owner, ticket.ID, "Cancelado"); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("unknown status: got %v, want VALIDATION_FAILED", err)
	}

	updated, err := fx.svc.PatchStatus(context.Background(), &owner, ticket.ID, domain.TicketStatusResolved)
	if err != nil {
		t.Fatalf("owner patch: %v", err)
	}
	if updated.Status != domain.TicketStatusResolved {
		t.Errorf("status = %q, want Resolvido", updated.Status)
	}
}

func TestEscalatePrefersOnlineTechnicians(t *testing.T) {
	fx := newTicketFixture(requester(), onlineTechnician(), offlineTechnician(), administrator())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Rede caiu no segundo andar")
	if err != nil {
		t.Fatal(err)
	}

	updated, assignee, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID)
	if err != nil {
		t.Fatalf("Escalate: %v", err)
	}
	if assignee.ID != "t1" {
		t.Errorf("assignee = %s, want the online technician", assignee.ID)
	}
	if !updated.AtribuidoATecnico || updated.TecnicoID == nil || *updated.TecnicoID != "t1" {
		t.Errorf("ticket not latched to technician: %+v", updated)
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Errorf("second escalate: got %v, want INVALID_STATE", err)
	}
}

func TestEscalateRequiresOwnerAndCandidates(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Teclado com teclas falhando")
	if err != nil {
		t.Fatal(err)
	}

	outsider := domain.User{ID: "u9", Role: domain.RoleUsuario}
	if _, _, err := fx.svc.Escalate(context.Background(), &outsider, ticket.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("outsider escalate: got %v, want FORBIDDEN", err)
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); !apperrors.IsCode(err, "NO_TECHNICIAN_AVAILABLE") {
		t.Errorf("no candidates: got %v, want NO_TECHNICIAN_AVAILABLE", err)
	}

	current, err := fx.tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if current.AtribuidoATecnico || current.TecnicoID != nil {
		t.Error("failed escalation must leave the ticket unassigned")
	}
}

func TestEscalateConcurrentSingleWinner(t *testing.T) {
	fx := newTicketFixture(requester(), onlineTechnician(), offlineTechnician())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Sistema lento para todos os usuários")
	if err != nil {
		t.Fatal(err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !apperrors.IsCode(err, "INVALID_STATE") {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("got %d successful escalations, want exactly 1", wins)
	}
}

// blockingAssistant pauses inside Reply so a test can interleave other
// operations while an AI call is in flight.
type blockingAssistant struct {
	*ai.MockAssistant
	entered chan struct{}
	release chan struct{}
}

func (a *blockingAssistant) Reply(ctx context.Context, message string, history []domain.ChatMessage) string {
	a.entered <- struct{}{}
	<-a.release
	return a.MockAssistant.Reply(ctx, message, history)
}

func TestEscalateDuringPendingReplyKeepsAssignment(t *testing.T) {
	fx := newTicketFixture(requester(), onlineTechnician())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Servidor de arquivos inacessível")
	if err != nil {
		t.Fatal(err)
	}

	blocking := &blockingAssistant{
		MockAssistant: fx.mock,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	slow := NewTicketService(TicketDependencies{
		TicketRepo:  fx.tickets,
		MessageRepo: fx.messages,
		Assistant:   blocking,
		Selector:    fx.svc.selector,
		Logger:      zap.NewNop(),
	})

	done := make(chan error, 1)
	go func() {
		_, _, err := slow.AddMessage(context.Background(), &owner, ticket.ID, "Alguma novidade sobre o problema?")
		done <- err
	}()

	<-blocking.entered // AddMessage is now parked on the AI call

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); err != nil {
		t.Fatalf("Escalate during pending reply: %v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	current, err := fx.tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !current.AtribuidoATecnico || current.TecnicoID == nil || *current.TecnicoID != "t1" {
		t.Fatalf("assignment lost to concurrent message: assigned=%v tecnico=%v",
			current.AtribuidoATecnico, current.TecnicoID)
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Errorf("re-escalate after concurrent message: got %v, want INVALID_STATE", err)
	}
}

func TestAddMessageConcurrentIDsStrictlyIncrease(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Sistema de arquivos compartilhado fora do ar")
	if err != nil {
		t.Fatal(err)
	}

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, _, err := fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "atualização "+strings.Repeat("x", n+1)); err != nil {
				t.Errorf("AddMessage: %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := fx.messages.ListByTicket(context.Background(), ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int64]bool{}
	last := int64(0)
	for _, msg := range all {
		if seen[msg.ID] {
			t.Fatalf("duplicate message id %d", msg.ID)
		}
		seen[msg.ID] = true
		if msg.ID <= last {
			t.Fatalf("ids not strictly increasing in append order: %d after %d", msg.ID, last)
		}
		last = msg.ID
	}

	after, err := fx.svc.ListMessagesAfter(context.Background(), &owner, ticket.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(all) {
		t.Errorf("cursor from zero returned %d messages, full listing has %d", len(after), len(all))
	}
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	got := preview(strings.Repeat("ç", 10), 8)
	if got != strings.Repeat("ç", 5)+"..." {
		t.Errorf("preview = %q, want five characters plus ellipsis", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("preview produced invalid UTF-8: %q", got)
	}
	if short := preview("  tudo certo  ", 120); short != "tudo certo" {
		t.Errorf("short preview = %q", short)
	}
}

func TestResolvePermissionsAndIdempotency(t *testing.T) {
	tecnico := onlineTechnician()
	fx := newTicketFixture(requester(), tecnico, administrator())
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Mouse parou de responder")
	if err != nil {
		t.Fatal(err)
	}

	// unassigned ticket: only an administrator may resolve
	if _, err := fx.svc.Resolve(context.Background(), &owner, ticket.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("owner resolve: got %v, want FORBIDDEN", err)
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); err != nil {
		t.Fatal(err)
	}

	other := domain.User{ID: "t9", Role: domain.RoleTecnico}
	if _, err := fx.svc.Resolve(context.Background(), &other, ticket.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("unassigned technician resolve: got %v, want FORBIDDEN", err)
	}

	resolved, err := fx.svc.Resolve(context.Background(), &tecnico, ticket.ID)
	if err != nil {
		t.Fatalf("assigned technician resolve: %v", err)
	}
	if resolved.Status != domain.TicketStatusResolved {
		t.Errorf("status = %q, want Resolvido", resolved.Status)
	}

	// resolving again is a silent no-op
	again, err := fx.svc.Resolve(context.Background(), &tecnico, ticket.ID)
	if err != nil {
		t.Fatalf("repeat resolve: %v", err)
	}
	if again.Status != domain.TicketStatusResolved {
		t.Errorf("repeat resolve status = %q", again.Status)
	}
}

func TestResolveByAdministratorOverride(t *testing.T) {
	tecnico := onlineTechnician()
	admin := administrator()
	fx := newTicketFixture(requester(), tecnico, admin)
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Aplicativo interno travando")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); err != nil {
		t.Fatal(err)
	}

	resolved, err := fx.svc.Resolve(context.Background(), &admin, ticket.ID)
	if err != nil {
		t.Fatalf("admin resolve: %v", err)
	}
	if resolved.Status != domain.TicketStatusResolved {
		t.Errorf("status = %q, want Resolvido", resolved.Status)
	}
}

func TestListMessagesAfterCursor(t *testing.T) {
	fx := newTicketFixture(requester())
	owner := requester()
	ticket, initial, err := fx.svc.CreateTicket(context.Background(), &owner, "E-mail corporativo recusando login")
	if err != nil {
		t.Fatal(err)
	}

	userMsg, aiMsg, err := fx.svc.AddMessage(context.Background(), &owner, ticket.ID, "A senha está correta, já conferi")
	if err != nil {
		t.Fatal(err)
	}

	cursor := initial[len(initial)-1].ID
	newer, err := fx.svc.ListMessagesAfter(context.Background(), &owner, ticket.ID, cursor)
	if err != nil {
		t.Fatalf("ListMessagesAfter: %v", err)
	}
	if len(newer) != 2 {
		t.Fatalf("got %d messages after cursor, want 2", len(newer))
	}
	if newer[0].ID != userMsg.ID || newer[1].ID != aiMsg.ID {
		t.Errorf("cursor fetch out of order: %d,%d", newer[0].ID, newer[1].ID)
	}
	for _, msg := range newer {
		if msg.ID <= cursor {
			t.Errorf("message id %d not after cursor %d", msg.ID, cursor)
		}
	}

	outsider := domain.User{ID: "u9", Role: domain.RoleUsuario}
	if _, err := fx.svc.ListMessagesAfter(context.Background(), &outsider, ticket.ID, 0); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("outsider cursor fetch: got %v, want FORBIDDEN", err)
	}
}

func TestListScopes(t *testing.T) {
	tecnico := onlineTechnician()
	fx := newTicketFixture(requester(), tecnico)
	owner := requester()
	mine, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Notebook esquentando demais")
	if err != nil {
		t.Fatal(err)
	}
	other := domain.User{ID: "u2", Name: "Carlos", Role: domain.RoleUsuario}
	fx.users.users["u2"] = other
	if _, _, err := fx.svc.CreateTicket(context.Background(), &other, "VPN desconectando toda hora"); err != nil {
		t.Fatal(err)
	}

	own, err := fx.svc.ListOwnTickets(context.Background(), &owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].ID != mine.ID {
		t.Errorf("own listing = %+v, want only ticket %d", own, mine.ID)
	}

	if _, err := fx.svc.ListAllTickets(context.Background(), &owner); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("regular user listing all: got %v, want FORBIDDEN", err)
	}

	all, err := fx.svc.ListAllTickets(context.Background(), &tecnico)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("staff sees %d tickets, want 2", len(all))
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, mine.ID); err != nil {
		t.Fatal(err)
	}
	assigned, err := fx.svc.ListTechnicianTickets(context.Background(), &tecnico)
	if err != nil {
		t.Fatal(err)
	}
	if len(assigned) != 1 || assigned[0].ID != mine.ID {
		t.Errorf("assigned listing = %+v, want only ticket %d", assigned, mine.ID)
	}
}

func TestGetTicketDetailAccess(t *testing.T) {
	tecnico := onlineTechnician()
	fx := newTicketFixture(requester(), tecnico)
	owner := requester()
	ticket, _, err := fx.svc.CreateTicket(context.Background(), &owner, "Telefone IP sem sinal de linha")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := fx.svc.GetTicketDetail(context.Background(), &tecnico, ticket.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Errorf("unassigned technician detail: got %v, want FORBIDDEN", err)
	}

	if _, _, err := fx.svc.Escalate(context.Background(), &owner, ticket.ID); err != nil {
		t.Fatal(err)
	}

	got, msgs, err := fx.svc.GetTicketDetail(context.Background(), &tecnico, ticket.ID)
	if err != nil {
		t.Fatalf("assigned technician detail: %v", err)
	}
	if got.ID != ticket.ID || len(msgs) != 2 {
		t.Errorf("detail = %+v with %d messages", got, len(msgs))
	}
}
