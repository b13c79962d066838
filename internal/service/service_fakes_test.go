package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/repository/contract"
	"jane-proxy-be/internal/repository/specification"
	"jane-proxy-be/internal/repository/unitofwork"
	"jane-proxy-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory repository fakes backing the service tests. Specifications
// are interpreted structurally: the fakes understand the concrete spec
// types the services actually use.

type fakeStore struct {
	conversations []*entity.Conversation
	messages      []*entity.Message
	licenses      map[string]*entity.License
	orders        map[uuid.UUID]*entity.BillingOrder

	mu        sync.Mutex
	auditLogs []*entity.AuditLog
}

func (s *fakeStore) auditSnapshot() []*entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AuditLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	return out
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		licenses: make(map[string]*entity.License),
		orders:   make(map[uuid.UUID]*entity.BillingOrder),
	}
}

type querySpec struct {
	userId         string
	conversationId *uuid.UUID
	id             *uuid.UUID
	orderDesc      bool
	limit          int
}

func parseSpecs(specs []specification.Specification) querySpec {
	var q querySpec
	for _, s := range specs {
		switch v := s.(type) {
		case specification.UserOwnedBy:
			q.userId = v.UserID
		case specification.ByConversationID:
			id := v.ConversationID
			q.conversationId = &id
		case specification.ByID:
			id := v.ID
			q.id = &id
		case specification.OrderBy:
			q.orderDesc = v.Desc
		case specification.Pagination:
			q.limit = v.Limit
		}
	}
	return q
}

type fakeConversationRepo struct{ store *fakeStore }

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	c := *conversation
	r.store.conversations = append(r.store.conversations, &c)
	return nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	q := parseSpecs(specs)
	var out []*entity.Conversation
	for _, c := range r.store.conversations {
		if q.userId != "" && c.UserId != q.userId {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.orderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	m := *message
	r.store.messages = append(r.store.messages, &m)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	q := parseSpecs(specs)
	var out []*entity.Message
	for _, m := range r.store.messages {
		if q.conversationId != nil && m.ConversationId != *q.conversationId {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.orderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeLicenseRepo struct{ store *fakeStore }

func (r *fakeLicenseRepo) Upsert(ctx context.Context, license *entity.License) error {
	l := *license
	r.store.licenses[license.UserId] = &l
	return nil
}

func (r *fakeLicenseRepo) FindByUserId(ctx context.Context, userId string) (*entity.License, error) {
	if l, ok := r.store.licenses[userId]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

type fakeBillingOrderRepo struct{ store *fakeStore }

func (r *fakeBillingOrderRepo) Create(ctx context.Context, order *entity.BillingOrder) error {
	o := *order
	r.store.orders[order.Id] = &o
	return nil
}

func (r *fakeBillingOrderRepo) Update(ctx context.Context, order *entity.BillingOrder) error {
	o := *order
	r.store.orders[order.Id] = &o
	return nil
}

func (r *fakeBillingOrderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingOrder, error) {
	q := parseSpecs(specs)
	if q.id != nil {
		if o, ok := r.store.orders[*q.id]; ok {
			c := *o
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeBillingOrderRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingOrder, error) {
	q := parseSpecs(specs)
	var out []*entity.BillingOrder
	for _, o := range r.store.orders {
		if q.userId != "" && o.UserId != q.userId {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

type fakeAuditLogRepo struct{ store *fakeStore }

func (r *fakeAuditLogRepo) Create(ctx context.Context, entry *entity.AuditLog) error {
	e := *entry
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.auditLogs = append(r.store.auditLogs, &e)
	return nil
}

type fakeUnitOfWork struct{ store *fakeStore }

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}
func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUnitOfWork) LicenseRepository() contract.LicenseRepository {
	return &fakeLicenseRepo{store: u.store}
}
func (u *fakeUnitOfWork) BillingOrderRepository() contract.BillingOrderRepository {
	return &fakeBillingOrderRepo{store: u.store}
}
func (u *fakeUnitOfWork) AuditLogRepository() contract.AuditLogRepository {
	return &fakeAuditLogRepo{store: u.store}
}

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

// fakeLLMProvider streams scripted deltas, or fails when failWith is set.
// sawCtxDone records whether the stream context was already cancelled by
// the time a delta was rejected.
type fakeLLMProvider struct {
	deltas     []string
	failWith   error
	calls      int
	sawCtxDone bool
}

func (p *fakeLLMProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.calls++
	if p.failWith != nil {
		return "", p.failWith
	}
	var full string
	for _, d := range p.deltas {
		full += d
	}
	return full, nil
}

func (p *fakeLLMProvider) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamHandler, opts ...llm.Option) error {
	p.calls++
	if p.failWith != nil {
		return p.failWith
	}
	for _, d := range p.deltas {
		if err := fn(d); err != nil {
			select {
			case <-ctx.Done():
				p.sawCtxDone = true
			default:
			}
			return err
		}
	}
	return nil
}

type fakePublisherService struct {
	published [][]byte
	failWith  error
}

func (p *fakePublisherService) Publish(ctx context.Context, payload []byte) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

var errProviderDown = errors.New("provider unavailable")
