package article

import (
	"context"
	"errors"
	"testing"

	"servicedesk-backend/apperr"
	"servicedesk-backend/model"
	"servicedesk-backend/service/vectorindex"
)

type fakeStore struct {
	nextID   uint
	articles map[uint]*model.KnowledgeArticle
	tickets  map[uint]*model.Ticket

	feedbackErr error

	// 模拟反馈落库和回读之间文章被并发删除
	deleteOnFeedback bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		articles: make(map[uint]*model.KnowledgeArticle),
		tickets:  make(map[uint]*model.Ticket),
	}
}

func (s *fakeStore) CreateArticle(article *model.KnowledgeArticle) error {
	article.ID = s.nextID
	s.nextID++
	copied := *article
	s.articles[article.ID] = &copied
	return nil
}

func (s *fakeStore) GetArticle(id uint) (*model.KnowledgeArticle, error) {
	article, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (s *fakeStore) SaveArticle(article *model.KnowledgeArticle) error {
	copied := *article
	s.articles[article.ID] = &copied
	return nil
}

func (s *fakeStore) DeleteArticle(id uint) error {
	delete(s.articles, id)
	return nil
}

func (s *fakeStore) AppendFeedback(articleID uint, userEmail string, helped bool) error {
	if s.feedbackErr != nil {
		return s.feedbackErr
	}
	if s.deleteOnFeedback {
		delete(s.articles, articleID)
		return nil
	}
	article := s.articles[articleID]
	if helped {
		article.HelpfulCount++
		article.ConfidenceScore++
	} else {
		article.NotHelpfulCount++
		article.ConfidenceScore--
	}
	return nil
}

func (s *fakeStore) GetTicket(id uint) (*model.Ticket, error) {
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *ticket
	return &copied, nil
}

type fakeVectors struct {
	payloads  []vectorindex.Payload
	deleted   []uint
	updateErr error
	deleteErr error
}

func (v *fakeVectors) UpdatePayload(ctx context.Context, payload vectorindex.Payload) error {
	if v.updateErr != nil {
		return v.updateErr
	}
	v.payloads = append(v.payloads, payload)
	return nil
}

func (v *fakeVectors) Delete(ctx context.Context, articleID uint) error {
	if v.deleteErr != nil {
		return v.deleteErr
	}
	v.deleted = append(v.deleted, articleID)
	return nil
}

func TestCreate(t *testing.T) {
	s := newService(newFakeStore(), &fakeVectors{})

	article, err := s.Create(CreateParams{
		Title:      "打印机脱机处理",
		RawContent: "重启打印后台处理程序服务",
		Author:     "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 有原始内容时直接进入待处理状态
	if article.Status != model.StatusUnprocessed {
		t.Errorf("status = %s, want unprocessed", article.Status)
	}
	if article.Source != model.SourceManual {
		t.Errorf("source = %s, want manual", article.Source)
	}
	if len(article.Keywords) == 0 {
		t.Error("keywords should be extracted on create")
	}
	if article.LastEditor != "alice@example.com" {
		t.Errorf("last editor = %q", article.LastEditor)
	}
}

func TestCreateEmptyContentStaysDraft(t *testing.T) {
	s := newService(newFakeStore(), &fakeVectors{})

	article, err := s.Create(CreateParams{Title: "占位标题"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if article.Status != model.StatusDraft {
		t.Errorf("status = %s, want draft", article.Status)
	}

	if _, err := s.Create(CreateParams{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty title error = %v, want validation", err)
	}
}

func TestCreateFromTicket(t *testing.T) {
	store := newFakeStore()
	equipmentID := uint(3)
	store.tickets[1] = &model.Ticket{
		ID:          1,
		Title:       "VPN断连",
		Description: "客户端频繁断开",
		EquipmentID: &equipmentID,
		Status:      model.TicketStatusClosed,
	}
	store.tickets[2] = &model.Ticket{ID: 2, Title: "处理中的工单", Status: model.TicketStatusInProgress}
	s := newService(store, &fakeVectors{})

	article, err := s.CreateFromTicket(1, "bob@example.com")
	if err != nil {
		t.Fatalf("CreateFromTicket() error = %v", err)
	}

	if article.Source != model.SourceTicket {
		t.Errorf("source = %s, want ticket", article.Source)
	}
	if article.OriginTicketID == nil || *article.OriginTicketID != 1 {
		t.Errorf("origin ticket = %v, want 1", article.OriginTicketID)
	}
	if article.Status != model.StatusUnprocessed {
		t.Errorf("status = %s, want unprocessed", article.Status)
	}
	if len(article.EquipmentIDs) != 1 || article.EquipmentIDs[0] != 3 {
		t.Errorf("equipment ids = %v, want ticket equipment copied", article.EquipmentIDs)
	}

	// 未关闭的工单不能转文章
	if _, err := s.CreateFromTicket(2, "bob@example.com"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("open ticket error = %v, want validation", err)
	}
	if _, err := s.CreateFromTicket(99, "bob@example.com"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing ticket error = %v, want not found", err)
	}
}

func TestPatchNormalizedContentGuard(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1, Title: "t", Status: model.StatusUnprocessed}
	store.articles[2] = &model.KnowledgeArticle{ID: 2, Title: "t", Status: model.StatusNormalized}
	s := newService(store, &fakeVectors{})

	text := "手工修订的内容"

	// 未规范化的文章不允许直接改规范化文本
	_, err := s.Patch(1, PatchParams{NormalizedContent: &text})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Patch() error = %v, want validation", err)
	}

	article, err := s.Patch(2, PatchParams{NormalizedContent: &text, Editor: "carol@example.com"})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if article.NormalizedContent != text {
		t.Errorf("normalized content = %q", article.NormalizedContent)
	}
	if article.LastEditor != "carol@example.com" {
		t.Errorf("last editor = %q", article.LastEditor)
	}
}

func TestPublish(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1, Status: model.StatusNormalized}
	store.articles[2] = &model.KnowledgeArticle{ID: 2, Status: model.StatusDraft}
	s := newService(store, &fakeVectors{})

	article, err := s.Publish(1)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if article.Status != model.StatusPublished || article.PublishedAt == nil {
		t.Errorf("article = %+v, want published with timestamp", article)
	}

	if _, err := s.Publish(2); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("publish draft error = %v, want validation", err)
	}
}

// 反馈计数只增不减，置信分随helped增减
func TestFeedback(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1, Status: model.StatusNormalized}
	vectors := &fakeVectors{}
	s := newService(store, vectors)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Feedback(ctx, 1, "u@example.com", true); err != nil {
			t.Fatalf("Feedback() error = %v", err)
		}
	}
	article, err := s.Feedback(ctx, 1, "u@example.com", false)
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}

	if article.HelpfulCount != 3 || article.NotHelpfulCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", article.HelpfulCount, article.NotHelpfulCount)
	}
	if article.ConfidenceScore != 2 {
		t.Errorf("confidence = %d, want 2", article.ConfidenceScore)
	}

	// 每次反馈后把新置信分推到向量库
	if len(vectors.payloads) != 4 {
		t.Fatalf("payload pushes = %d, want 4", len(vectors.payloads))
	}
	if last := vectors.payloads[3]; last.ConfidenceScore != 2 {
		t.Errorf("pushed confidence = %d, want 2", last.ConfidenceScore)
	}
}

// 反馈落库后文章被并发删除时返回not found，不触发向量推送
func TestFeedbackArticleDeletedConcurrently(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1}
	store.deleteOnFeedback = true
	vectors := &fakeVectors{}
	s := newService(store, vectors)

	_, err := s.Feedback(context.Background(), 1, "u@example.com", true)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Feedback() error = %v, want not found", err)
	}
	if len(vectors.payloads) != 0 {
		t.Errorf("payload pushes = %d, want 0", len(vectors.payloads))
	}
}

// 向量库推送失败不影响反馈落库
func TestFeedbackVectorFailureIgnored(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1}
	s := newService(store, &fakeVectors{updateErr: errors.New("milvus down")})

	article, err := s.Feedback(context.Background(), 1, "u@example.com", true)
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if article.HelpfulCount != 1 {
		t.Errorf("helpful count = %d, want 1", article.HelpfulCount)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1}
	vectors := &fakeVectors{}
	s := newService(store, vectors)

	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.articles[1]; ok {
		t.Error("article not deleted")
	}
	if len(vectors.deleted) != 1 || vectors.deleted[0] != 1 {
		t.Errorf("vector deletes = %v, want [1]", vectors.deleted)
	}
}

// 向量删除失败不影响数据库删除结果
func TestDeleteVectorFailureIgnored(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1}
	s := newService(store, &fakeVectors{deleteErr: errors.New("milvus down")})

	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.articles[1]; ok {
		t.Error("article not deleted")
	}
}

func TestArchive(t *testing.T) {
	store := newFakeStore()
	store.articles[1] = &model.KnowledgeArticle{ID: 1, Status: model.StatusPublished}
	s := newService(store, &fakeVectors{})

	article, err := s.Archive(1)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if article.Status != model.StatusArchived {
		t.Errorf("status = %s, want archived", article.Status)
	}
}
