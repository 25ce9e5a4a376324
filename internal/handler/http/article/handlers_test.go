package article_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/handler/http/article"
	"balanced-news/internal/handler/http/auth"
	"balanced-news/internal/repository"
	artUC "balanced-news/internal/usecase/article"
)

/* ───────── スタブ ───────── */

type stubArticleRepo struct {
	lastQuery repository.ArticleQuery
	listOut   []*entity.Article
	listErr   error
	getOut    *entity.Article
	getErr    error
}

func (s *stubArticleRepo) ListByQuery(_ context.Context, q repository.ArticleQuery) ([]*entity.Article, error) {
	s.lastQuery = q
	return s.listOut, s.listErr
}

func (s *stubArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	return s.getOut, s.getErr
}

// 以下は未使用だが、インターフェース満たすために実装
func (s *stubArticleRepo) Create(_ context.Context, _ *entity.Article) error { return nil }
func (s *stubArticleRepo) CountByQuery(_ context.Context, _ repository.ArticleQuery) (int64, error) {
	return 0, nil
}
func (s *stubArticleRepo) ExistsByURL(_ context.Context, _ string) (bool, error) { return false, nil }
func (s *stubArticleRepo) Stats(_ context.Context) (repository.ArticleStats, error) {
	return repository.ArticleStats{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func classified(id int64, reading, density, bias, propaganda float64) *entity.Article {
	return &entity.Article{
		ID:       id,
		SourceID: 1,
		Title:    "Article",
		URL:      "https://example.com/a",
		Classification: &entity.Classification{
			ReadingLevel:       reading,
			InformationDensity: density,
			BiasScore:          bias,
			PropagandaScore:    propaganda,
			WordCount:          400,
			Topics:             []string{"science"},
			Region:             "Europe",
		},
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

/* ───────── List Handler テスト ───────── */

func TestListHandler_Anonymous(t *testing.T) {
	stub := &stubArticleRepo{listOut: []*entity.Article{
		classified(2, 5, 5, 7, 7),
		{ID: 1, SourceID: 1, Title: "Paywalled", URL: "https://example.com/p", Paywalled: true},
	}}
	handler := article.ListHandler{
		Svc:    &artUC.Service{Repo: stub},
		Logger: discardLogger(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	// 匿名アクセスは絞り込みなしのページング窓だけ
	if stub.lastQuery.Limit != artUC.DefaultLimit {
		t.Errorf("Limit = %d, want %d", stub.lastQuery.Limit, artUC.DefaultLimit)
	}
	if stub.lastQuery.HidePaywalled {
		t.Error("anonymous query must not hide paywalled articles")
	}
	if len(stub.lastQuery.Topics) != 0 {
		t.Errorf("Topics = %v, want none", stub.lastQuery.Topics)
	}

	var out []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if _, ok := out[0]["classification"]; !ok {
		t.Error("classified article must expose classification")
	}
	if _, ok := out[1]["classification"]; ok {
		t.Error("unclassified article must omit classification")
	}
}

func TestListHandler_Paging(t *testing.T) {
	stub := &stubArticleRepo{}
	handler := article.ListHandler{Svc: &artUC.Service{Repo: stub}, Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/api/articles?limit=5&skip=10", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if stub.lastQuery.Limit != 5 || stub.lastQuery.Skip != 10 {
		t.Errorf("query = limit %d skip %d, want 5/10", stub.lastQuery.Limit, stub.lastQuery.Skip)
	}
}

func TestListHandler_LimitClamping(t *testing.T) {
	stub := &stubArticleRepo{}
	handler := article.ListHandler{Svc: &artUC.Service{Repo: stub}, Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/api/articles?limit=500&skip=-3", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if stub.lastQuery.Limit != artUC.MaxLimit {
		t.Errorf("Limit = %d, want clamp to %d", stub.lastQuery.Limit, artUC.MaxLimit)
	}
	if stub.lastQuery.Skip != 0 {
		t.Errorf("Skip = %d, want clamp to 0", stub.lastQuery.Skip)
	}
}

func TestListHandler_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "non-numeric limit", query: "limit=abc"},
		{name: "float limit", query: "limit=1.5"},
		{name: "non-numeric skip", query: "skip=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := article.ListHandler{Svc: &artUC.Service{Repo: &stubArticleRepo{}}, Logger: discardLogger()}
			req := httptest.NewRequest(http.MethodGet, "/api/articles?"+tt.query, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListHandler_PolicyFiltering(t *testing.T) {
	inBand := classified(1, 5, 5, 7, 7)
	biased := classified(2, 5, 5, 3, 7) // バイアススコアが閾値未満
	stub := &stubArticleRepo{listOut: []*entity.Article{inBand, biased}}
	handler := article.ListHandler{Svc: &artUC.Service{Repo: stub}, Logger: discardLogger()}

	policy := entity.DefaultPreferencePolicy()
	policy.ShowPaywalled = false
	policy.Topics = []string{"science"}
	policy.Regions = []string{"Europe"}
	policy.MinLength = 100
	policy.MaxLength = 2000

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req = req.WithContext(auth.WithPolicy(req.Context(), &policy))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	// 集合・範囲条件はストアクエリへ運ばれる
	q := stub.lastQuery
	if !q.HidePaywalled {
		t.Error("HidePaywalled must carry into the query")
	}
	if len(q.Topics) != 1 || q.Topics[0] != "science" {
		t.Errorf("Topics = %v", q.Topics)
	}
	if q.TopicsMode != entity.TopicsModeAny {
		t.Errorf("TopicsMode = %q", q.TopicsMode)
	}
	if len(q.Regions) != 1 || q.Regions[0] != "Europe" {
		t.Errorf("Regions = %v", q.Regions)
	}
	if q.MinWordCount != 100 || q.MaxWordCount != 2000 {
		t.Errorf("word count band = [%d, %d], want [100, 2000]", q.MinWordCount, q.MaxWordCount)
	}

	// スコア帯域の残余フィルタは帯域外の記事を落とす
	var out []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1 (residual filter)", len(out))
	}
	if int64(out[0]["id"].(float64)) != inBand.ID {
		t.Errorf("kept id = %v, want %d", out[0]["id"], inBand.ID)
	}
}

func TestListHandler_DefaultLengthRangeStaysOut(t *testing.T) {
	stub := &stubArticleRepo{}
	handler := article.ListHandler{Svc: &artUC.Service{Repo: stub}, Logger: discardLogger()}

	policy := entity.DefaultPreferencePolicy()

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req = req.WithContext(auth.WithPolicy(req.Context(), &policy))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	// [0, 5000) のままなら語数条件はクエリに載せない
	if stub.lastQuery.MinWordCount != 0 || stub.lastQuery.MaxWordCount != 0 {
		t.Errorf("word count band = [%d, %d], want inactive",
			stub.lastQuery.MinWordCount, stub.lastQuery.MaxWordCount)
	}
}

func TestListHandler_RepoError(t *testing.T) {
	stub := &stubArticleRepo{listErr: errors.New("db down")}
	handler := article.ListHandler{Svc: &artUC.Service{Repo: stub}, Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

/* ───────── Get Handler テスト ───────── */

func TestGetHandler_Success(t *testing.T) {
	stub := &stubArticleRepo{getOut: classified(9, 6, 4, 8, 9)}
	handler := article.GetHandler{Svc: &artUC.Service{Repo: stub}}

	req := httptest.NewRequest(http.MethodGet, "/api/articles/9", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var out struct {
		ID             int64 `json:"id"`
		Classification *struct {
			ReadingLevel float64  `json:"reading_level"`
			BiasScore    float64  `json:"bias_score"`
			WordCount    int      `json:"word_count"`
			Topics       []string `json:"topics"`
			Region       string   `json:"region"`
		} `json:"classification"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 9 {
		t.Errorf("ID = %d, want 9", out.ID)
	}
	if out.Classification == nil {
		t.Fatal("classification missing")
	}
	if out.Classification.BiasScore != 8 || out.Classification.Region != "Europe" {
		t.Errorf("classification = %+v", out.Classification)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	stub := &stubArticleRepo{getOut: nil}
	handler := article.GetHandler{Svc: &artUC.Service{Repo: stub}}

	req := httptest.NewRequest(http.MethodGet, "/api/articles/9", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetHandler_InvalidID(t *testing.T) {
	for _, path := range []string{"/api/articles/abc", "/api/articles/-1", "/api/articles/0"} {
		t.Run(path, func(t *testing.T) {
			handler := article.GetHandler{Svc: &artUC.Service{Repo: &stubArticleRepo{}}}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}
