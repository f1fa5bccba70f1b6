// Package conversation 对话服务单元测试
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/zenhr/hr-assistant/internal/engine"
	"github.com/zenhr/hr-assistant/internal/model"
)

// mockStore Mock 对话存储
type mockStore struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	messages      map[string][]*model.Message
	createError   error
	updateError   error
	createMsgErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[string][]*model.Message),
	}
}

func (m *mockStore) Create(conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	m.conversations[conv.ID] = conv
	return nil
}

func (m *mockStore) GetByID(id string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conv, ok := m.conversations[id]; ok {
		return conv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStore) GetBySessionKey(tenantID, sessionKey string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conv := range m.conversations {
		if conv.TenantID == tenantID && conv.SessionKey == sessionKey {
			return conv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStore) List(tenantID string, offset, limit int) ([]*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*model.Conversation, 0)
	for _, conv := range m.conversations {
		if conv.TenantID == tenantID {
			result = append(result, conv)
		}
	}
	return result, nil
}

func (m *mockStore) Update(conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.conversations[conv.ID]; !ok {
		return errors.New("conversation not found")
	}
	m.conversations[conv.ID] = conv
	return nil
}

func (m *mockStore) CreateMessage(msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createMsgErr != nil {
		return m.createMsgErr
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return nil
}

func (m *mockStore) GetMessageByID(id string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msgs := range m.messages {
		for _, msg := range msgs {
			if msg.ID == id {
				return msg, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStore) UpdateMessageFeedback(id string, fb *model.MessageFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msgs := range m.messages {
		for _, msg := range msgs {
			if msg.ID == id {
				msg.Feedback = fb
				return nil
			}
		}
	}
	return errors.New("message not found")
}

func (m *mockStore) GetRecentMessages(conversationID string, limit int) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// copyStore 读写均复制对话文档，模拟真实存储的按次读取与整体写回
type copyStore struct {
	mockStore
}

func (s *copyStore) Create(conv *model.Conversation) error {
	return s.mockStore.Create(cloneConversation(conv))
}

func (s *copyStore) GetByID(id string) (*model.Conversation, error) {
	conv, err := s.mockStore.GetByID(id)
	if err != nil {
		return nil, err
	}
	return cloneConversation(conv), nil
}

func (s *copyStore) GetBySessionKey(tenantID, sessionKey string) (*model.Conversation, error) {
	conv, err := s.mockStore.GetBySessionKey(tenantID, sessionKey)
	if err != nil {
		return nil, err
	}
	return cloneConversation(conv), nil
}

func (s *copyStore) Update(conv *model.Conversation) error {
	return s.mockStore.Update(cloneConversation(conv))
}

func cloneConversation(conv *model.Conversation) *model.Conversation {
	c := *conv
	if conv.Context != nil {
		c.Context = model.ContextMap{}
		for k, v := range conv.Context {
			c.Context[k] = v
		}
	}
	if conv.Analytics != nil {
		a := *conv.Analytics
		c.Analytics = &a
	}
	if conv.Escalation != nil {
		e := *conv.Escalation
		c.Escalation = &e
	}
	if conv.EndedAt != nil {
		at := *conv.EndedAt
		c.EndedAt = &at
	}
	return &c
}

// stepClock 每次调用前进固定步长的假时钟
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func newTestService(store Store) (*Service, *stepClock) {
	return newTestServiceWith(store, nil, nil)
}

func newTestServiceWith(store Store, generator engine.Generator, directory engine.EmployeeService) (*Service, *stepClock) {
	orchestrator := engine.NewOrchestrator(
		engine.NewKnowledgeMatcher(nil),
		engine.NewTrainableMatcher(nil),
		engine.NewDispatcher(nil, nil, nil, nil),
		generator,
	)
	svc := NewService(store, orchestrator, NewContextCache(nil), directory)
	clock := &stepClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), step: 50 * time.Millisecond}
	svc.now = clock.Now
	return svc, clock
}

// captureGenerator 记录收到的提示与轮次的 Mock 生成后端
type captureGenerator struct {
	mu     sync.Mutex
	calls  int
	system string
	turns  []engine.GenTurn
}

func (g *captureGenerator) Generate(ctx context.Context, system string, turns []engine.GenTurn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.system = system
	g.turns = append([]engine.GenTurn{}, turns...)
	return "Let me connect you with HR for that.", nil
}

// fakeDirectory Mock 员工目录
type fakeDirectory struct {
	mu    sync.Mutex
	calls int
}

func (d *fakeDirectory) Profile(ctx context.Context, tenantID, employeeID string) (*engine.EmployeeProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return &engine.EmployeeProfile{
		ID:         employeeID,
		Name:       "Dana Reyes",
		Title:      "HR Generalist",
		Department: "People",
	}, nil
}

func (d *fakeDirectory) Search(ctx context.Context, tenantID, query string) ([]*engine.EmployeeProfile, error) {
	return nil, nil
}

func TestTurnCreatesConversationAndAppendsMessages(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)

	resp, err := svc.Turn(context.Background(), &TurnRequest{
		TenantID:   "tenant-a",
		SessionID:  "sess-1",
		EmployeeID: "emp-1",
		Message:    "hello",
	})
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("session = %q, want sess-1", resp.SessionID)
	}
	if resp.Response.Intent != "greeting" {
		t.Errorf("intent = %q, want greeting", resp.Response.Intent)
	}

	conv, err := store.GetBySessionKey("tenant-a", "sess-1")
	if err != nil {
		t.Fatalf("conversation was not created: %v", err)
	}
	if conv.Status != model.StatusActive {
		t.Errorf("status = %q, want active", conv.Status)
	}

	msgs := store.messages[conv.ID]
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want exactly 2 per turn", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("roles = %q, %q, want user then assistant", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Intent != "greeting" {
		t.Errorf("user message intent = %q, want greeting", msgs[0].Intent)
	}

	if conv.Analytics.MessageCount != 2 {
		t.Errorf("messageCount = %d, want 2", conv.Analytics.MessageCount)
	}
	if conv.Analytics.TurnCount != 1 {
		t.Errorf("turnCount = %d, want 1", conv.Analytics.TurnCount)
	}
}

func TestTurnRollingAverageResponseTime(t *testing.T) {
	store := newMockStore()
	svc, clock := newTestService(store)
	ctx := context.Background()

	// 第一轮：时钟步长 50ms，时延即均值
	if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "hello"}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	conv, _ := store.GetBySessionKey("tenant-a", "s")
	if conv.Analytics.AvgResponseTimeMs != 50 {
		t.Fatalf("first avg = %v, want 50", conv.Analytics.AvgResponseTimeMs)
	}

	// 第二轮：时延 150ms，均值为两轮的算术平均
	clock.step = 150 * time.Millisecond
	if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "thanks"}); err != nil {
		t.Fatalf("second turn: %v", err)
	}
	conv, _ = store.GetBySessionKey("tenant-a", "s")
	if conv.Analytics.AvgResponseTimeMs != 100 {
		t.Errorf("second avg = %v, want 100", conv.Analytics.AvgResponseTimeMs)
	}
	if conv.Analytics.MessageCount != 4 || conv.Analytics.TurnCount != 2 {
		t.Errorf("counters = %d/%d, want 4/2", conv.Analytics.MessageCount, conv.Analytics.TurnCount)
	}
}

func TestTurnValidation(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)

	_, err := svc.Turn(context.Background(), &TurnRequest{TenantID: "tenant-a", Message: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("blank message should fail validation, got %v", err)
	}
}

func TestTurnGeneratesSessionKey(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)

	resp, err := svc.Turn(context.Background(), &TurnRequest{TenantID: "tenant-a", Message: "hello"})
	if err != nil {
		t.Fatalf("Turn() error = %v", err)
	}
	if resp.SessionID == "" {
		t.Error("omitted session id should be generated")
	}
}

func TestTurnPersistenceFailure(t *testing.T) {
	store := newMockStore()
	store.createMsgErr = errors.New("disk full")
	svc, _ := newTestService(store)

	_, err := svc.Turn(context.Background(), &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "hello"})
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("message append failure should map to ErrPersistence, got %v", err)
	}
}

func TestTurnContextCarriesIntent(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "I want to apply for annual leave tomorrow"}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	conv, _ := store.GetBySessionKey("tenant-a", "s")
	if conv.Context["current_intent"] != "leave.apply" {
		t.Fatalf("context intent = %v, want leave.apply", conv.Context["current_intent"])
	}
	if conv.Context["last_topic"] != "leave" {
		t.Errorf("topic = %v, want leave", conv.Context["last_topic"])
	}

	// 第二轮确认词被上下文消解为确认变体
	resp, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "yes"})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if resp.Response.Intent != "leave.apply.confirm" {
		t.Errorf("intent = %q, want leave.apply.confirm", resp.Response.Intent)
	}
	if !resp.Response.ActionExecuted {
		t.Error("confirmation should execute the pending action")
	}
}

func TestTurnsAreSerializedPerSession(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	const turns = 10
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "race", Message: "hello"}); err != nil {
				t.Errorf("Turn() error = %v", err)
			}
		}()
	}
	wg.Wait()

	conv, err := store.GetBySessionKey("tenant-a", "race")
	if err != nil {
		t.Fatal("conversation missing after concurrent turns")
	}
	if conv.Analytics.MessageCount != turns*2 {
		t.Errorf("messageCount = %d, want %d", conv.Analytics.MessageCount, turns*2)
	}
	if conv.Analytics.TurnCount != turns {
		t.Errorf("turnCount = %d, want %d", conv.Analytics.TurnCount, turns)
	}
	if got := len(store.messages[conv.ID]); got != turns*2 {
		t.Errorf("stored messages = %d, want %d", got, turns*2)
	}
}

func TestLifecycleOpsAcquireSessionLock(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		op   func(svc *Service, msgID string) error
	}{
		{"escalate", func(svc *Service, _ string) error {
			_, err := svc.Escalate(ctx, &EscalateRequest{TenantID: "tenant-a", SessionID: "s", Reason: "r"})
			return err
		}},
		{"end", func(svc *Service, _ string) error {
			_, err := svc.End(ctx, "tenant-a", "s")
			return err
		}},
		{"feedback", func(svc *Service, msgID string) error {
			return svc.Feedback(ctx, &FeedbackRequest{TenantID: "tenant-a", SessionID: "s", MessageID: msgID, Rating: 4})
		}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			svc, _ := newTestService(store)
			conv := seedConversation(t, svc, store)
			msgID := store.messages[conv.ID][1].ID

			release := svc.locks.Acquire("tenant-a:s")
			done := make(chan error, 1)
			go func() { done <- tt.op(svc, msgID) }()

			select {
			case <-done:
				t.Fatal("operation completed while the session lock was held")
			case <-time.After(50 * time.Millisecond):
			}

			release()
			if err := <-done; err != nil {
				t.Fatalf("operation error after release = %v", err)
			}
		})
	}
}

func TestEscalationSurvivesConcurrentTurns(t *testing.T) {
	store := &copyStore{mockStore: *newMockStore()}
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "hello"}); err != nil {
		t.Fatalf("seed turn: %v", err)
	}

	const extra = 5
	var wg sync.WaitGroup
	wg.Add(extra + 1)
	go func() {
		defer wg.Done()
		if _, err := svc.Escalate(ctx, &EscalateRequest{TenantID: "tenant-a", SessionID: "s", Reason: "payroll dispute"}); err != nil {
			t.Errorf("Escalate() error = %v", err)
		}
	}()
	for i := 0; i < extra; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "thanks"}); err != nil {
				t.Errorf("Turn() error = %v", err)
			}
		}()
	}
	wg.Wait()

	conv, err := store.mockStore.GetBySessionKey("tenant-a", "s")
	if err != nil {
		t.Fatalf("conversation missing: %v", err)
	}
	if conv.Status != model.StatusEscalated {
		t.Errorf("status = %q, escalation must not be lost to a concurrent turn", conv.Status)
	}
	if conv.Escalation == nil || conv.Escalation.Reason != "payroll dispute" {
		t.Errorf("escalation record = %+v, want it preserved", conv.Escalation)
	}
	// 每轮 +2，升级的系统消息 +1
	if want := (extra+1)*2 + 1; conv.Analytics.MessageCount != want {
		t.Errorf("messageCount = %d, want %d", conv.Analytics.MessageCount, want)
	}
}

func TestTurnHistoryWindowForGenerator(t *testing.T) {
	store := newMockStore()
	gen := &captureGenerator{}
	svc, _ := newTestServiceWith(store, gen, nil)
	ctx := context.Background()

	// 7 轮模板回复积累 14 条历史消息
	for i := 0; i < 7; i++ {
		if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "hello"}); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("templated turns must not reach the generator, calls = %d", gen.calls)
	}

	if _, err := svc.Turn(ctx, &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "zorp qanta blix"}); err != nil {
		t.Fatalf("fallback turn: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	// 14 条历史 + 当前输入，历史不得被截断
	if len(gen.turns) != 15 {
		t.Fatalf("generator turns = %d, want 15", len(gen.turns))
	}
	if first := gen.turns[0]; first.Role != "user" || first.Content != "hello" {
		t.Errorf("window start = %+v, want the oldest user message", first)
	}
	if last := gen.turns[len(gen.turns)-1]; last.Content != "zorp qanta blix" {
		t.Errorf("last turn = %q, want the current utterance", last.Content)
	}
}

func TestTurnEmployeeContextFromDirectory(t *testing.T) {
	store := newMockStore()
	gen := &captureGenerator{}
	dir := &fakeDirectory{}
	svc, _ := newTestServiceWith(store, gen, dir)
	ctx := context.Background()

	req := &TurnRequest{TenantID: "tenant-a", SessionID: "s", EmployeeID: "emp-1", Message: "zorp qanta blix"}
	if _, err := svc.Turn(ctx, req); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if !strings.Contains(gen.system, "Dana Reyes, HR Generalist, People department") {
		t.Errorf("system prompt %q should carry the employee profile", gen.system)
	}

	conv, _ := store.GetBySessionKey("tenant-a", "s")
	if conv.Context["employee_context"] != "Dana Reyes, HR Generalist, People department" {
		t.Errorf("context = %v, profile should persist with the conversation", conv.Context["employee_context"])
	}

	// 第二轮复用已持久化的档案，不再访问目录
	if _, err := svc.Turn(ctx, req); err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if dir.calls != 1 {
		t.Errorf("directory calls = %d, want 1", dir.calls)
	}
}

func seedConversation(t *testing.T, svc *Service, store *mockStore) *model.Conversation {
	t.Helper()
	if _, err := svc.Turn(context.Background(), &TurnRequest{TenantID: "tenant-a", SessionID: "s", Message: "hello"}); err != nil {
		t.Fatalf("seed turn: %v", err)
	}
	conv, err := store.GetBySessionKey("tenant-a", "s")
	if err != nil {
		t.Fatalf("seed conversation missing: %v", err)
	}
	return conv
}

func TestEscalate(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	conv := seedConversation(t, svc, store)
	before := conv.Analytics.MessageCount

	got, err := svc.Escalate(context.Background(), &EscalateRequest{
		TenantID:   "tenant-a",
		SessionID:  "s",
		Reason:     "payroll dispute",
		EscalateTo: "hr-team",
	})
	if err != nil {
		t.Fatalf("Escalate() error = %v", err)
	}
	if got.Status != model.StatusEscalated {
		t.Errorf("status = %q, want escalated", got.Status)
	}
	if got.Escalation == nil || got.Escalation.Reason != "payroll dispute" {
		t.Errorf("escalation record = %+v", got.Escalation)
	}

	// 恰好一条系统消息，计数 +1
	msgs := store.messages[conv.ID]
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleSystem {
		t.Errorf("last message role = %q, want system", last.Role)
	}
	if got.Analytics.MessageCount != before+1 {
		t.Errorf("messageCount = %d, want %d", got.Analytics.MessageCount, before+1)
	}
}

func TestEscalateClosedConversation(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	seedConversation(t, svc, store)

	if _, err := svc.End(context.Background(), "tenant-a", "s"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	_, err := svc.Escalate(context.Background(), &EscalateRequest{TenantID: "tenant-a", SessionID: "s", Reason: "too late"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("escalating a closed conversation should fail validation, got %v", err)
	}
}

func TestEscalateUnknownSession(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)

	_, err := svc.Escalate(context.Background(), &EscalateRequest{TenantID: "tenant-a", SessionID: "ghost", Reason: "r"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session should be not found, got %v", err)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	seedConversation(t, svc, store)
	ctx := context.Background()

	first, err := svc.End(ctx, "tenant-a", "s")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if first.Status != model.StatusClosed || first.EndedAt == nil {
		t.Errorf("closed conversation = %+v", first)
	}

	second, err := svc.End(ctx, "tenant-a", "s")
	if err != nil {
		t.Fatalf("second End() error = %v", err)
	}
	if !second.EndedAt.Equal(*first.EndedAt) {
		t.Error("repeated End must not move the end timestamp")
	}
}

func TestEndUnknownSession(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)

	_, err := svc.End(context.Background(), "tenant-a", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session should be not found, got %v", err)
	}
}

func TestEndAfterEscalation(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	seedConversation(t, svc, store)
	ctx := context.Background()

	if _, err := svc.Escalate(ctx, &EscalateRequest{TenantID: "tenant-a", SessionID: "s", Reason: "r"}); err != nil {
		t.Fatalf("Escalate() error = %v", err)
	}
	got, err := svc.End(ctx, "tenant-a", "s")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if got.Status != model.StatusClosed {
		t.Errorf("status = %q, want closed", got.Status)
	}
}

func TestFeedback(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	conv := seedConversation(t, svc, store)
	ctx := context.Background()

	assistantMsg := store.messages[conv.ID][1]
	helpful := true

	err := svc.Feedback(ctx, &FeedbackRequest{
		TenantID:  "tenant-a",
		SessionID: "s",
		MessageID: assistantMsg.ID,
		Helpful:   &helpful,
		Rating:    4,
		Comment:   "quick answer",
	})
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}

	if assistantMsg.Feedback == nil || assistantMsg.Feedback.Rating != 4 {
		t.Errorf("feedback not attached: %+v", assistantMsg.Feedback)
	}
	if conv.Analytics.SatisfactionScore != 4 {
		t.Errorf("satisfaction = %v, want 4", conv.Analytics.SatisfactionScore)
	}
	if conv.Analytics.RatingCount != 1 {
		t.Errorf("ratingCount = %d, want 1", conv.Analytics.RatingCount)
	}
	if conv.Analytics.Resolution != "resolved" {
		t.Errorf("resolution = %q, want resolved", conv.Analytics.Resolution)
	}

	// 第二个评分并入滚动均值
	if err := svc.Feedback(ctx, &FeedbackRequest{TenantID: "tenant-a", SessionID: "s", MessageID: assistantMsg.ID, Rating: 2}); err != nil {
		t.Fatalf("second Feedback() error = %v", err)
	}
	if conv.Analytics.SatisfactionScore != 3 {
		t.Errorf("satisfaction = %v, want 3", conv.Analytics.SatisfactionScore)
	}
}

func TestFeedbackWrongConversation(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	seedConversation(t, svc, store)

	// 另一会话的消息不可评
	if _, err := svc.Turn(context.Background(), &TurnRequest{TenantID: "tenant-a", SessionID: "other", Message: "hi"}); err != nil {
		t.Fatalf("other turn: %v", err)
	}
	other, _ := store.GetBySessionKey("tenant-a", "other")
	foreign := store.messages[other.ID][0]

	err := svc.Feedback(context.Background(), &FeedbackRequest{
		TenantID:  "tenant-a",
		SessionID: "s",
		MessageID: foreign.ID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign message should be not found, got %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	store := newMockStore()
	svc, _ := newTestService(store)
	conv := seedConversation(t, svc, store)
	ctx := context.Background()

	convs, total, err := svc.List(ctx, &ListRequest{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(convs) != 1 {
		t.Errorf("list = %d items, want 1", len(convs))
	}

	got, err := svc.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != conv.ID {
		t.Errorf("Get returned %q, want %q", got.ID, conv.ID)
	}

	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id should be not found, got %v", err)
	}
}
