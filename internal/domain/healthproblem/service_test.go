package healthproblem

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/pkg/pagination"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*HealthProblem
	seq   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*HealthProblem)}
}

func (m *mockRepo) Create(_ context.Context, hp *HealthProblem) error {
	m.seq++
	hp.ID = uuid.New()
	hp.Seq = m.seq
	hp.CreatedAt = time.Now()
	hp.UpdatedAt = hp.CreatedAt
	cp := *hp
	m.items[hp.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*HealthProblem, error) {
	hp, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound()
	}
	cp := *hp
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, hp *HealthProblem) error {
	if _, ok := m.items[hp.ID]; !ok {
		return ErrNotFound()
	}
	cp := *hp
	m.items[hp.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound()
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) ordered() []*HealthProblem {
	out := make([]*HealthProblem, 0, len(m.items))
	for _, hp := range m.items {
		out = append(out, hp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*HealthProblem, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid window limit=%d offset=%d", limit, offset)
	}
	all := m.ordered()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Severity > all[j].Severity })
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *mockRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*HealthProblem, error) {
	var out []*HealthProblem
	for _, hp := range m.ordered() {
		if hp.CustomerID == customerID {
			out = append(out, hp)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]*HealthProblem, error) {
	out := make(map[uuid.UUID][]*HealthProblem)
	for _, id := range customerIDs {
		items, _ := m.ListByCustomer(ctx, id)
		if len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

func (m *mockRepo) ExistsByCustomerAndName(_ context.Context, customerID uuid.UUID, problemName string) (bool, error) {
	for _, hp := range m.items {
		if hp.CustomerID == customerID && hp.ProblemName == problemName {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) DeleteByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	var n int64
	for id, hp := range m.items {
		if hp.CustomerID == customerID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) SeveritySums(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, hp := range m.items {
		out[hp.CustomerID] += int(hp.Severity)
	}
	return out, nil
}

// -- Mock collaborators --

type mockCustomers map[uuid.UUID]bool

func (m mockCustomers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m[id], nil
}

type passTx struct{ calls int }

func (p *passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, mockCustomers) {
	repo := newMockRepo()
	customers := mockCustomers{}
	return NewService(repo, customers, &passTx{}, zerolog.Nop()), repo, customers
}

func newCustomer(customers mockCustomers) uuid.UUID {
	id := uuid.New()
	customers[id] = true
	return id
}

// -- Tests --

func TestService_Create(t *testing.T) {
	svc, repo, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)

	ref, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityHigh})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ref.ID)
	assert.Equal(t, "flu", ref.ProblemName)

	stored, err := repo.GetByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, stored.CustomerID)
	assert.Equal(t, SeverityHigh, stored.Severity)
}

func TestService_Create_DuplicateNamePerCustomer(t *testing.T) {
	svc, repo, customers := newTestService()
	ctx := context.Background()
	a := newCustomer(customers)
	b := newCustomer(customers)

	_, err := svc.Create(ctx, Request{CustomerID: a, ProblemName: "flu", Severity: SeverityLow})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Request{CustomerID: a, ProblemName: "flu", Severity: SeverityHigh})
	assert.True(t, apperr.IsConflict(err), "got %v", err)
	assert.Len(t, repo.items, 1)

	_, err = svc.Create(ctx, Request{CustomerID: b, ProblemName: "flu", Severity: SeverityHigh})
	assert.NoError(t, err)
	assert.Len(t, repo.items, 2)
}

func TestService_Create_NameIsCaseSensitive(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)

	_, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityLow})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Request{CustomerID: owner, ProblemName: "Flu", Severity: SeverityLow})
	assert.NoError(t, err)
}

func TestService_Create_UnknownCustomer(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), Request{CustomerID: uuid.New(), ProblemName: "flu", Severity: SeverityLow})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, customerNotFoundMessage, apperr.MessageOf(err))
	assert.Empty(t, repo.items)
}

func TestService_Create_Invalid(t *testing.T) {
	svc, repo, customers := newTestService()
	owner := newCustomer(customers)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing customer", Request{ProblemName: "flu", Severity: SeverityLow}},
		{"empty name", Request{CustomerID: owner, Severity: SeverityLow}},
		{"short name", Request{CustomerID: owner, ProblemName: "ab", Severity: SeverityLow}},
		{"bad severity", Request{CustomerID: owner, ProblemName: "flu", Severity: 3}},
		{"zero severity", Request{CustomerID: owner, ProblemName: "flu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.True(t, apperr.IsInvalid(err), "got %v", err)
		})
	}
	assert.Empty(t, repo.items)
}

func TestService_GetByID(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	ref, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "asthma", Severity: SeverityLow})
	require.NoError(t, err)

	v, err := svc.GetByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, View{ID: ref.ID, CustomerID: owner, ProblemName: "asthma", Severity: SeverityLow}, v)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_Update(t *testing.T) {
	svc, repo, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	ref, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityLow})
	require.NoError(t, err)

	other := newCustomer(customers)
	out, err := svc.Update(ctx, ref.ID, Request{CustomerID: other, ProblemName: "influenza", Severity: SeverityHigh})
	require.NoError(t, err)
	assert.Equal(t, "influenza", out.ProblemName)

	stored := repo.items[ref.ID]
	assert.Equal(t, owner, stored.CustomerID, "owner never changes")
	assert.Equal(t, SeverityHigh, stored.Severity)
}

func TestService_Update_SameNameSkipsConflict(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	ref, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityLow})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ref.ID, Request{ProblemName: "flu", Severity: SeverityHigh})
	assert.NoError(t, err)
}

func TestService_Update_RenameConflict(t *testing.T) {
	svc, repo, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	_, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityLow})
	require.NoError(t, err)
	ref, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "cold", Severity: SeverityLow})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ref.ID, Request{ProblemName: "flu", Severity: SeverityLow})
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, "cold", repo.items[ref.ID].ProblemName)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), Request{ProblemName: "flu", Severity: SeverityLow})
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_Delete(t *testing.T) {
	svc, repo, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	keep, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "asthma", Severity: SeverityLow})
	require.NoError(t, err)
	drop, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityHigh})
	require.NoError(t, err)

	out, err := svc.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, drop.ID, out.ID)

	remaining, err := svc.ListByCustomer(ctx, owner)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)

	_, err = svc.Delete(ctx, drop.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.Len(t, repo.items, 1)
}

func TestService_List(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	for _, r := range []Request{
		{CustomerID: owner, ProblemName: "cold", Severity: SeverityLow},
		{CustomerID: owner, ProblemName: "flu", Severity: SeverityHigh},
		{CustomerID: owner, ProblemName: "asthma", Severity: SeverityLow},
	} {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, pagination.New(0, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "flu", page.Content[0].ProblemName)
	assert.Equal(t, "cold", page.Content[1].ProblemName)

	page, err = svc.List(ctx, pagination.New(5, 2))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 3, page.TotalElements)
}

func TestService_List_HugePage(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)
	_, err := svc.Create(ctx, Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityHigh})
	require.NoError(t, err)

	page, err := svc.List(ctx, pagination.New(1<<62, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 1, page.TotalElements)
	assert.True(t, page.Last)
}

func TestService_ListByCustomer(t *testing.T) {
	svc, _, customers := newTestService()
	ctx := context.Background()
	owner := newCustomer(customers)

	views, err := svc.ListByCustomer(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = svc.ListByCustomer(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, customerNotFoundMessage, apperr.MessageOf(err))
}

type failingTx struct{ err error }

func (f failingTx) WithinTx(context.Context, func(context.Context) error) error { return f.err }

func TestService_TxErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(newMockRepo(), mockCustomers{}, failingTx{err: boom}, zerolog.Nop())

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
}
